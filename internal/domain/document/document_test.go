package document

import (
	"encoding/json"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		doc    Document
		want   string
		wantOK bool
	}{
		{"string", Document{"slug": "a"}, "a", true},
		{"number", Document{"slug": 42}, "42", true},
		{"missing", Document{"title": "A"}, "", false},
		{"nil", Document{"slug": nil}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.doc.Key("slug")
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Key() = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestNewBatch_NilIsEmptyArray(t *testing.T) {
	data, err := json.Marshal(NewBatch(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"value":[]}` {
		t.Errorf("body = %s, want {\"value\":[]}", data)
	}
}

func TestNewBatch_Body(t *testing.T) {
	docs := []Document{
		{"slug": "a", "title": "A"},
		{"slug": "b", "title": "B"},
	}
	data, err := json.Marshal(NewBatch(docs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"value":[{"slug":"a","title":"A"},{"slug":"b","title":"B"}]}`
	if string(data) != want {
		t.Errorf("body = %s, want %s", data, want)
	}
}
