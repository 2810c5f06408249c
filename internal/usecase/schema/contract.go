package schema

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

// IndexClient manages remote index definitions.
type IndexClient interface {
	DeleteIndex(ctx context.Context, name string) error
	PutIndex(ctx context.Context, def index.Definition) error
}
