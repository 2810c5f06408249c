package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domainbatch "github.com/kailas-cloud/searchsync/internal/domain/batch"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// Service uploads document batches to an index.
type Service struct {
	client  DocumentIndexer
	verbose bool
}

// New creates a document publisher.
func New(client DocumentIndexer) *Service {
	return &Service{client: client}
}

// WithVerbose enables logging of the per-document results of each upload.
func (s *Service) WithVerbose(verbose bool) *Service {
	s.verbose = verbose
	return s
}

// Publish uploads docs as a single batch and returns how many were sent.
// An empty batch is skipped. Success is decided for the batch as a whole.
func (s *Service) Publish(ctx context.Context, indexName string, docs []document.Document) (int, error) {
	logger := logpkg.FromContext(ctx).With(zap.String("index", indexName))

	if len(docs) == 0 {
		logger.Warn("No documents to index, skipping upload")
		return 0, nil
	}

	logger.Info("Indexing documents", zap.Int("documents", len(docs)))
	results, err := s.client.IndexDocuments(ctx, indexName, docs)
	if err != nil {
		logger.Error("Failed to index documents", zap.Error(err))
		return 0, fmt.Errorf("index documents to %q: %w", indexName, err)
	}

	metrics.DocumentsUploadedTotal.WithLabelValues(indexName).Add(float64(len(docs)))
	logger.Info("Indexed documents", zap.Int("documents", len(docs)))

	if s.verbose {
		logItemResults(logger, results)
	}
	return len(docs), nil
}

func logItemResults(logger *zap.Logger, results []domainbatch.Result) {
	logger.Info("Index response",
		zap.Int("items", len(results)),
		zap.Int("failed", domainbatch.Failed(results)),
	)
	for _, r := range results {
		if r.Status() != domainbatch.StatusError {
			continue
		}
		logger.Info("Document rejected",
			zap.String("key", r.Key()),
			zap.Int("status_code", r.StatusCode()),
			zap.String("message", r.Message()),
		)
	}
}
