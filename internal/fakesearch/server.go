// Package fakesearch is an in-memory stand-in for the hosted search service.
// It speaks the index and bulk document endpoints, records every request,
// and can be told to fail specific calls.
package fakesearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type failure struct {
	status  int
	code    string
	message string
}

// Service holds indexes and documents in memory.
type Service struct {
	apiKey     string
	apiVersion string

	mu       sync.Mutex
	indexes  map[string]index.Definition
	docs     map[string]map[string]document.Document
	requests []Request
	failures map[string]failure
}

// New creates a fake service that accepts the given key and api version.
func New(apiKey, apiVersion string) *Service {
	return &Service{
		apiKey:     apiKey,
		apiVersion: apiVersion,
		indexes:    make(map[string]index.Definition),
		docs:       make(map[string]map[string]document.Document),
		failures:   make(map[string]failure),
	}
}

// Handler returns the chi router serving the fake endpoints.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(apiKeyMiddleware(s.apiKey))
	r.Use(apiVersionMiddleware(s.apiVersion))
	r.Use(s.injectFailures)

	r.Delete("/indexes/{name}", s.deleteIndex)
	r.Put("/indexes/{name}", s.putIndex)
	r.Post("/indexes/{name}/docs/index", s.indexDocuments)
	return r
}

// FailOn makes every request matching method and path answer with the
// given status and error envelope.
func (s *Service) FailOn(method, path string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, code: code, message: message}
}

// SeedIndex stores a definition as if it had been created earlier.
func (s *Service) SeedIndex(def index.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[def.Name] = def
	if s.docs[def.Name] == nil {
		s.docs[def.Name] = make(map[string]document.Document)
	}
}

// Requests returns a copy of all recorded requests in arrival order.
func (s *Service) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns recorded requests with the given method and path.
func (s *Service) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Index returns the stored definition of an index.
func (s *Service) Index(name string) (index.Definition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.indexes[name]
	return def, ok
}

// Documents returns a copy of the documents stored in an index, by key.
func (s *Service) Documents(name string) map[string]document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]document.Document, len(s.docs[name]))
	for k, v := range s.docs[name] {
		out[k] = v
	}
	return out
}

func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Service) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeError(w, f.status, f.code, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) deleteIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	_, ok := s.indexes[name]
	delete(s.indexes, name)
	delete(s.docs, name)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("No index with the name '%s' was found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) putIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var def index.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", "invalid index definition: "+err.Error())
		return
	}
	if def.Name != name {
		writeError(w, http.StatusBadRequest, "InvalidRequestParameter",
			"the index name in the request body must match the URL")
		return
	}
	if def.KeyField() == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequestParameter",
			"the index must have exactly one key field")
		return
	}

	s.mu.Lock()
	prev, existed := s.indexes[name]
	if existed && prev.KeyField() != def.KeyField() {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "CannotChangeExistingField",
			"the key field of an existing index cannot be changed")
		return
	}
	s.indexes[name] = def
	if s.docs[name] == nil {
		s.docs[name] = make(map[string]document.Document)
	}
	s.mu.Unlock()

	if existed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

type itemResult struct {
	Key          string  `json:"key"`
	Status       bool    `json:"status"`
	ErrorMessage *string `json:"errorMessage"`
	StatusCode   int     `json:"statusCode"`
}

func (s *Service) indexDocuments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var batch document.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", "invalid batch: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.indexes[name]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The index '%s' was not found", name))
		return
	}

	keyField := def.KeyField()
	for _, doc := range batch.Value {
		if _, ok := doc.Key(keyField); !ok {
			writeError(w, http.StatusBadRequest, "InvalidRequestBody",
				fmt.Sprintf("The request is invalid. Details: The key field '%s' is missing a value.", keyField))
			return
		}
	}

	results := make([]itemResult, 0, len(batch.Value))
	for _, doc := range batch.Value {
		key, _ := doc.Key(keyField)
		code := http.StatusCreated
		if _, exists := s.docs[name][key]; exists {
			code = http.StatusOK
		}
		s.docs[name][key] = doc
		results = append(results, itemResult{Key: key, Status: true, StatusCode: code})
	}

	writeJSON(w, http.StatusOK, map[string]any{"value": results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
