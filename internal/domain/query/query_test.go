package query

import (
	"context"
	"encoding/json"
	"testing"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", ``, 0},
		{"null", `null`, 0},
		{"object", `{"allPage":{"edges":[]}}`, 0},
		{"empty array", `[]`, 0},
		{"objects", `[{"slug":"a"},{"slug":"b"}]`, 2},
		{"scalars", `[1,2,3]`, 0},
		{"null element", `[null,{"slug":"a"}]`, 0},
		{"mixed", `[{"slug":"a"},"b"]`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := Identity(context.Background(), Result{Data: json.RawMessage(tc.data)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(docs) != tc.want {
				t.Errorf("got %d documents, want %d", len(docs), tc.want)
			}
		})
	}
}

func TestIdentity_KeepsFields(t *testing.T) {
	docs, _ := Identity(context.Background(), Result{Data: json.RawMessage(`[{"slug":"a","title":"A"}]`)})
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0]["slug"] != "a" || docs[0]["title"] != "A" {
		t.Errorf("unexpected document: %v", docs[0])
	}
}

func TestSpec_TransformOrIdentity(t *testing.T) {
	s := Spec{Query: "{ x }"}
	docs, err := s.TransformOrIdentity()(context.Background(), Result{Data: json.RawMessage(`{"x":1}`)})
	if err != nil || len(docs) != 0 {
		t.Fatalf("default transform = (%v, %v), want no documents", docs, err)
	}
}

func TestResult_Decode(t *testing.T) {
	var out struct {
		All struct {
			Count int `json:"count"`
		} `json:"all"`
	}
	res := Result{Data: json.RawMessage(`{"all":{"count":3}}`)}
	if err := res.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.All.Count != 3 {
		t.Errorf("count = %d, want 3", out.All.Count)
	}

	if err := (Result{}).Decode(&out); err == nil {
		t.Error("expected error for empty data")
	}
}
