package document

import "fmt"

// Document is one flat record destined for an index: field name to value.
// Shape is not checked locally; the search service is the only judge.
type Document map[string]any

// Key returns the value of the key field rendered as a string.
func (d Document) Key(field string) (string, bool) {
	v, ok := d[field]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Batch is the body of a bulk index call.
type Batch struct {
	Value []Document `json:"value"`
}

// NewBatch wraps documents in a Batch. A nil slice becomes an empty one so
// the body always carries a "value" array.
func NewBatch(docs []Document) Batch {
	if docs == nil {
		docs = []Document{}
	}
	return Batch{Value: docs}
}
