package build

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
)

// IndexManager brings the remote index in line with a definition.
type IndexManager interface {
	Apply(ctx context.Context, def index.Definition) error
}

// QueryRunner turns one query specification into documents.
type QueryRunner interface {
	Run(ctx context.Context, spec domquery.Spec) ([]document.Document, error)
}

// Publisher uploads one batch of documents.
type Publisher interface {
	Publish(ctx context.Context, indexName string, docs []document.Document) (int, error)
}
