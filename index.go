package searchsync

import (
	"context"
	"fmt"
)

// TypedIndex is a schema-first index definition inferred from T's struct
// tags at construction time. The same struct shapes the uploaded documents.
type TypedIndex[T any] struct {
	def  Definition
	meta *schemaMeta
}

// NewIndex creates a typed index for the given name.
// T must be a struct with search tags and exactly one key field.
func NewIndex[T any](name string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	idx := &TypedIndex[T]{
		def:  Definition{Name: name, Fields: meta.fields},
		meta: meta,
	}
	if err := idx.def.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // already carries the index name
	}
	return idx, nil
}

// WithCORS sets the CORS policy of the index.
func (idx *TypedIndex[T]) WithCORS(allowedOrigins []string, maxAgeInSeconds int) *TypedIndex[T] {
	idx.def.CORSOptions = &CORSOptions{AllowedOrigins: allowedOrigins, MaxAgeInSeconds: maxAgeInSeconds}
	return idx
}

// Name returns the index name.
func (idx *TypedIndex[T]) Name() string { return idx.def.Name }

// Definition returns the index definition.
func (idx *TypedIndex[T]) Definition() Definition { return idx.def }

// Documents converts items to documents keyed by their search tags.
func (idx *TypedIndex[T]) Documents(items []T) []Document {
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		if doc := idx.meta.toDocument(item); doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

// TypedQuery binds a query to a typed transform: the result data is
// decoded into D, fn maps it to items, and each item becomes a document
// of idx.
func TypedQuery[D, T any](
	idx *TypedIndex[T], name, query string, fn func(ctx context.Context, data D) ([]T, error),
) Query {
	return Query{
		Name:  name,
		Query: query,
		Transform: func(ctx context.Context, res Result) ([]Document, error) {
			var data D
			if err := res.Decode(&data); err != nil {
				return nil, err //nolint:wrapcheck // decode errors are self-describing
			}
			items, err := fn(ctx, data)
			if err != nil {
				return nil, err
			}
			return idx.Documents(items), nil
		},
	}
}
