package azsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domainbatch "github.com/kailas-cloud/searchsync/internal/domain/batch"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	"github.com/kailas-cloud/searchsync/internal/fakesearch"
)

const testKey = "admin-key"

func siteDefinition() index.Definition {
	return index.Definition{
		Name: "site",
		Fields: []index.Field{
			{Name: "slug", Type: index.String, Key: true},
			{Name: "title", Type: index.String},
		},
	}
}

func newFake(t *testing.T) (*fakesearch.Service, *Client) {
	t.Helper()
	fake := fakesearch.New(testKey, DefaultAPIVersion)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{Endpoint: srv.URL, APIKey: testKey})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return fake, c
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no endpoint", Config{APIKey: "k"}},
		{"no key", Config{Endpoint: "https://x.search.windows.net"}},
		{"relative endpoint", Config{Endpoint: "x.search.windows.net", APIKey: "k"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClient(&tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEndpointForService(t *testing.T) {
	if got := EndpointForService("otakism"); got != "https://otakism.search.windows.net" {
		t.Errorf("EndpointForService = %q", got)
	}
}

func TestPutIndex_SendsDefinition(t *testing.T) {
	fake, c := newFake(t)

	if err := c.PutIndex(context.Background(), siteDefinition()); err != nil {
		t.Fatalf("PutIndex: %v", err)
	}

	reqs := fake.RequestsTo(http.MethodPut, "/indexes/site")
	if len(reqs) != 1 {
		t.Fatalf("got %d PUT requests, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Header.Get("api-key") != testKey {
		t.Errorf("api-key = %q", req.Header.Get("api-key"))
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
	}
	if req.Query != "api-version="+DefaultAPIVersion {
		t.Errorf("query = %q", req.Query)
	}

	var sent index.Definition
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if sent.Name != "site" || sent.KeyField() != "slug" || len(sent.Fields) != 2 {
		t.Errorf("unexpected body: %+v", sent)
	}
}

func TestPutIndex_Idempotent(t *testing.T) {
	fake, c := newFake(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.PutIndex(ctx, siteDefinition()); err != nil {
			t.Fatalf("PutIndex #%d: %v", i+1, err)
		}
	}

	def, ok := fake.Index("site")
	if !ok {
		t.Fatal("index not stored")
	}
	first, _ := json.Marshal(siteDefinition())
	stored, _ := json.Marshal(def)
	if string(first) != string(stored) {
		t.Errorf("schema changed after second put:\n%s\n%s", first, stored)
	}
}

func TestDeleteIndex_NotFound(t *testing.T) {
	_, c := newFake(t)

	err := c.DeleteIndex(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrServiceError) {
		t.Errorf("expected ErrServiceError, got %v", err)
	}

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *domain.APIError, got %T", err)
	}
	if apiErr.Code != "ResourceNotFound" {
		t.Errorf("code = %q", apiErr.Code)
	}
}

func TestDeleteIndex_Existing(t *testing.T) {
	fake, c := newFake(t)
	fake.SeedIndex(siteDefinition())

	if err := c.DeleteIndex(context.Background(), "site"); err != nil {
		t.Fatalf("DeleteIndex: %v", err)
	}
	if _, ok := fake.Index("site"); ok {
		t.Error("index still present")
	}
}

func TestIndexDocuments_Body(t *testing.T) {
	fake, c := newFake(t)
	fake.SeedIndex(siteDefinition())

	docs := []document.Document{
		{"slug": "a", "title": "A"},
		{"slug": "b", "title": "B"},
	}
	results, err := c.IndexDocuments(context.Background(), "site", docs)
	if err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if len(results) != 2 || domainbatch.Failed(results) != 0 {
		t.Errorf("unexpected results: %+v", results)
	}

	reqs := fake.RequestsTo(http.MethodPost, "/indexes/site/docs/index")
	if len(reqs) != 1 {
		t.Fatalf("got %d POST requests, want 1", len(reqs))
	}
	want := `{"value":[{"slug":"a","title":"A"},{"slug":"b","title":"B"}]}`
	if string(reqs[0].Body) != want {
		t.Errorf("body = %s, want %s", reqs[0].Body, want)
	}
}

func TestIndexDocuments_MissingKeyRejected(t *testing.T) {
	fake, c := newFake(t)
	fake.SeedIndex(siteDefinition())

	_, err := c.IndexDocuments(context.Background(), "site", []document.Document{{"title": "no key"}})
	if err == nil {
		t.Fatal("expected rejection")
	}
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "key field") {
		t.Errorf("error %q does not mention key field", err)
	}
}

func TestIndexDocuments_PartialResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(`{"value":[
			{"key":"a","status":true,"errorMessage":null,"statusCode":201},
			{"key":"b","status":false,"errorMessage":"field too long","statusCode":400}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(&Config{Endpoint: srv.URL, APIKey: testKey})
	results, err := c.IndexDocuments(context.Background(), "site", []document.Document{{"slug": "a"}, {"slug": "b"}})
	if err != nil {
		t.Fatalf("207 must be a successful batch, got %v", err)
	}
	if domainbatch.Failed(results) != 1 {
		t.Fatalf("expected one failed item, got %+v", results)
	}
	if results[1].Message() != "field too long" {
		t.Errorf("message = %q", results[1].Message())
	}
}

func TestDo_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c, _ := NewClient(&Config{Endpoint: srv.URL, APIKey: testKey})
	err := c.PutIndex(context.Background(), siteDefinition())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 502: upstream down") {
		t.Errorf("unexpected error: %v", err)
	}
	if errors.Is(err, domain.ErrIndexNotFound) {
		t.Error("502 must not match ErrIndexNotFound")
	}
}

func TestDo_WrongKey(t *testing.T) {
	fake := fakesearch.New(testKey, DefaultAPIVersion)
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	c, _ := NewClient(&Config{Endpoint: srv.URL, APIKey: "wrong"})
	err := c.PutIndex(context.Background(), siteDefinition())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestDo_VerboseRedactsKey(t *testing.T) {
	fake := fakesearch.New(testKey, DefaultAPIVersion)
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	core, logs := observer.New(zap.InfoLevel)
	c, _ := NewClient(&Config{Endpoint: srv.URL, APIKey: testKey, Verbose: true, Logger: zap.New(core)})
	if err := c.PutIndex(context.Background(), siteDefinition()); err != nil {
		t.Fatalf("PutIndex: %v", err)
	}

	if logs.FilterMessage("search request").Len() != 1 {
		t.Fatal("expected one request dump")
	}
	if logs.FilterMessage("search response").Len() != 1 {
		t.Fatal("expected one response dump")
	}
	for _, e := range logs.All() {
		for _, f := range e.Context {
			if strings.Contains(f.String, testKey) {
				t.Errorf("api key leaked in field %q", f.Key)
			}
		}
		if h, ok := e.ContextMap()["headers"].(map[string]string); ok && h["Api-Key"] != "[redacted]" {
			t.Errorf("api-key not redacted: %v", h)
		}
	}
}
