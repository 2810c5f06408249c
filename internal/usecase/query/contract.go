package query

import (
	"context"

	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
)

// ContentGraph executes queries against the site's content graph.
type ContentGraph interface {
	Execute(ctx context.Context, query string) (domquery.Result, error)
}
