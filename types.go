package searchsync

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/build"
	"github.com/kailas-cloud/searchsync/internal/usecase/schema"
)

// Definition is the declarative schema of a remote index.
type Definition = index.Definition

// Field describes one field of an index.
type Field = index.Field

// FieldType is the service data type of a field.
type FieldType = index.FieldType

// CORSOptions is the index CORS policy.
type CORSOptions = index.CORSOptions

// Field types.
const (
	FieldString           = index.String
	FieldDateTimeOffset   = index.DateTimeOffset
	FieldStringCollection = index.StringCollection
	FieldInt32            = index.Int32
	FieldInt64            = index.Int64
	FieldDouble           = index.Double
	FieldBoolean          = index.Boolean
)

// Document is one flat record to upload. It must carry the key field.
type Document = document.Document

// Result is the raw outcome of one content graph query.
type Result = domquery.Result

// Transform maps a query result to documents.
type Transform = domquery.Transform

// Query is one content graph query with its bound transform.
// A nil Transform means Identity.
type Query = domquery.Spec

// Identity passes data through when it is a JSON array of objects.
var Identity Transform = domquery.Identity

// Strategy selects how the remote index is brought in line with a definition.
type Strategy = schema.Strategy

// Index strategies.
const (
	StrategyRecreate = schema.StrategyRecreate
	StrategyUpsert   = schema.StrategyUpsert
)

// Report summarizes a Sync run.
type Report = build.Report

// QueryReport is the outcome of one query within a Sync run.
type QueryReport = build.QueryReport

// RunState is a step of a Sync run.
type RunState = build.State

// Run states.
const (
	StateIdle           = build.StateIdle
	StateIndexingSchema = build.StateIndexingSchema
	StateQuerying       = build.StateQuerying
	StateDone           = build.StateDone
	StateFailed         = build.StateFailed
)

// ContentGraph executes queries against the site's content graph.
// Errors reported by the graph belong in Result.Errors, not in err.
type ContentGraph interface {
	Execute(ctx context.Context, query string) (Result, error)
}

// GraphFunc adapts a function to ContentGraph.
type GraphFunc func(ctx context.Context, query string) (Result, error)

// Execute calls f.
func (f GraphFunc) Execute(ctx context.Context, query string) (Result, error) {
	return f(ctx, query)
}
