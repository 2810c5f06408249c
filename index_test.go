package searchsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

type post struct {
	Slug       string    `search:"slug,key,retrievable,sortable"`
	Title      string    `search:"title,searchable,retrievable,sortable,analyzer=zh-Hans.lucene"`
	Date       time.Time `search:"date,retrievable,sortable"`
	Categories []string  `search:"categories,searchable,filterable,retrievable"`
	Views      int32     `search:"views,sortable"`
	Score      *float64  `search:"score"`
	Draft      bool      `search:"draft,filterable"`
	Internal   string
	Skipped    string `search:"-"`
}

type noKeyDoc struct {
	Title string `search:"title,searchable"`
}

type badModifier struct {
	Slug string `search:"slug,key,primary"`
}

type unsupported struct {
	Slug string         `search:"slug,key"`
	Meta map[string]int `search:"meta"`
}

type overridden struct {
	Slug string         `search:"slug,key"`
	Meta map[string]int `search:"meta,type=Edm.String"`
}

func TestNewIndex_InfersDefinition(t *testing.T) {
	idx, err := NewIndex[post]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name() != "site" {
		t.Errorf("name = %q, want site", idx.Name())
	}

	fields := idx.Definition().Fields
	if len(fields) != 7 {
		t.Fatalf("len(fields) = %d, want 7", len(fields))
	}
	want := map[string]FieldType{
		"slug": FieldString, "title": FieldString, "date": FieldDateTimeOffset,
		"categories": FieldStringCollection, "views": FieldInt32, "score": FieldDouble, "draft": FieldBoolean,
	}
	for _, f := range fields {
		if want[f.Name] != f.Type {
			t.Errorf("field %s type = %s, want %s", f.Name, f.Type, want[f.Name])
		}
	}
	if !fields[0].Key || !fields[0].Retrievable || !fields[0].Sortable || fields[0].Searchable {
		t.Errorf("slug flags = %+v", fields[0])
	}
	if fields[1].Analyzer != "zh-Hans.lucene" {
		t.Errorf("title analyzer = %q", fields[1].Analyzer)
	}
}

func TestNewIndex_Errors(t *testing.T) {
	if _, err := NewIndex[noKeyDoc]("site"); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("no key: expected ErrInvalidSchema, got %v", err)
	}
	if _, err := NewIndex[badModifier]("site"); err == nil {
		t.Error("expected error for unknown modifier")
	}
	if _, err := NewIndex[unsupported]("site"); err == nil {
		t.Error("expected error for unsupported field type")
	}
	if _, err := NewIndex[int]("site"); err == nil {
		t.Error("expected error for non-struct type")
	}
	if _, err := NewIndex[post]("Bad Name"); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("bad name: expected ErrInvalidSchema, got %v", err)
	}
}

func TestNewIndex_TypeOverride(t *testing.T) {
	idx, err := NewIndex[overridden]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Definition().Fields[1].Type != FieldString {
		t.Errorf("meta type = %s, want Edm.String", idx.Definition().Fields[1].Type)
	}
}

func TestTypedIndex_WithCORS(t *testing.T) {
	idx, err := NewIndex[post]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := idx.WithCORS([]string{"*"}, 300).Definition()
	if def.CORSOptions == nil || def.CORSOptions.MaxAgeInSeconds != 300 || def.CORSOptions.AllowedOrigins[0] != "*" {
		t.Errorf("cors = %+v", def.CORSOptions)
	}
}

func TestTypedIndex_Documents(t *testing.T) {
	idx, err := NewIndex[post]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score := 1.5
	date := time.Date(2019, 5, 6, 0, 0, 0, 0, time.UTC)
	docs := idx.Documents([]post{
		{Slug: "a", Title: "A", Date: date, Categories: []string{"news"}, Score: &score, Internal: "x"},
		{Slug: "b"},
	})
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0]["slug"] != "a" || docs[0]["score"] != 1.5 || docs[0]["date"] != date {
		t.Errorf("doc = %v", docs[0])
	}
	if _, ok := docs[0]["Internal"]; ok {
		t.Error("untagged fields must not be exported")
	}
	if v, ok := docs[1]["score"]; !ok || v != nil {
		t.Errorf("nil pointer should be null, got %v (present=%v)", v, ok)
	}

	body, err := json.Marshal(docs[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["date"] != "2019-05-06T00:00:00Z" {
		t.Errorf("date encodes as %v", decoded["date"])
	}
}

type postsData struct {
	AllPosts struct {
		Edges []struct {
			Node struct {
				Slug  string `json:"slug"`
				Title string `json:"title"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"allPosts"`
}

func TestTypedQuery_Sync(t *testing.T) {
	idx, err := NewIndex[post]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := TypedQuery(idx, "posts", "{ allPosts { edges { node { slug title } } } }",
		func(_ context.Context, data postsData) ([]post, error) {
			out := make([]post, 0, len(data.AllPosts.Edges))
			for _, e := range data.AllPosts.Edges {
				out = append(out, post{Slug: e.Node.Slug, Title: e.Node.Title})
			}
			return out, nil
		})

	client, fake := newTestClient(t, WithStrategy(StrategyUpsert))
	graph := staticGraph(`{"allPosts":{"edges":[{"node":{"slug":"a","title":"A"}},{"node":{"slug":"b","title":"B"}}]}}`)

	report, err := client.Sync(context.Background(), graph, idx.Definition(), q)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Documents() != 2 {
		t.Errorf("documents = %d, want 2", report.Documents())
	}
	if len(fake.RequestsTo(http.MethodPost, "/indexes/site/docs/index")) != 1 {
		t.Error("expected one upload")
	}
	if stored := fake.Documents("site"); stored["b"]["title"] != "B" {
		t.Errorf("stored = %v", stored)
	}
}

func TestTypedQuery_DecodeError(t *testing.T) {
	idx, err := NewIndex[post]("site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := TypedQuery(idx, "posts", "{ x }", func(_ context.Context, _ postsData) ([]post, error) {
		return nil, nil
	})
	if _, err := q.Transform(context.Background(), Result{}); err == nil {
		t.Error("expected decode error for empty data")
	}
}
