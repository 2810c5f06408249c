package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
)

// Result is the raw outcome of one content graph query.
type Result struct {
	Data   json.RawMessage     `json:"data"`
	Errors []domain.GraphError `json:"errors,omitempty"`
}

// Decode unmarshals the result data into v.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("decode query data: empty data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode query data: %w", err)
	}
	return nil
}

// Transform maps a query result to documents.
type Transform func(ctx context.Context, res Result) ([]document.Document, error)

// Identity passes data through when it is a JSON array of objects, one
// document per element. Any other shape, including an array with a null
// element, yields no documents.
func Identity(_ context.Context, res Result) ([]document.Document, error) {
	trimmed := bytes.TrimSpace(res.Data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var docs []document.Document
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, nil //nolint:nilerr // non-object arrays are not documents
	}
	for _, doc := range docs {
		if doc == nil {
			return nil, nil
		}
	}
	return docs, nil
}

// Spec is one configured query with its bound transform.
type Spec struct {
	Name      string
	Query     string
	Transform Transform
}

// TransformOrIdentity returns the bound transform, or Identity when unset.
func (s Spec) TransformOrIdentity() Transform {
	if s.Transform == nil {
		return Identity
	}
	return s.Transform
}
