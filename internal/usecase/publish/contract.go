package publish

import (
	"context"

	domainbatch "github.com/kailas-cloud/searchsync/internal/domain/batch"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
)

// DocumentIndexer uploads a batch of documents in one bulk call.
type DocumentIndexer interface {
	IndexDocuments(ctx context.Context, indexName string, docs []document.Document) ([]domainbatch.Result, error)
}
