package searchsync

import "github.com/kailas-cloud/searchsync/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrInvalidSchema   = domain.ErrInvalidSchema
	ErrMissingQuery    = domain.ErrMissingQuery
	ErrGraphQuery      = domain.ErrGraphQuery
	ErrTransformFailed = domain.ErrTransformFailed
	ErrIndexNotFound   = domain.ErrIndexNotFound
	ErrServiceError    = domain.ErrServiceError
)

// APIError is a failed search service call. Use errors.As() to inspect it.
type APIError = domain.APIError

// GraphError is one error entry reported by the content graph.
type GraphError = domain.GraphError

// GraphQueryError carries the errors a content graph reported for a query.
type GraphQueryError = domain.GraphQueryError
