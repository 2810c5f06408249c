package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
)

// Service runs one query and turns its result into documents.
type Service struct {
	graph ContentGraph
}

// New creates a query runner.
func New(graph ContentGraph) *Service {
	return &Service{graph: graph}
}

// Run executes spec against the content graph and applies its transform.
// A missing query string fails before the graph is touched; graph-reported
// errors fail the query instead of yielding an empty result.
func (s *Service) Run(ctx context.Context, spec domquery.Spec) ([]document.Document, error) {
	if strings.TrimSpace(spec.Query) == "" {
		return nil, domain.ErrMissingQuery
	}
	logger := logpkg.FromContext(ctx)

	logger.Info("Running content graph query")
	res, err := s.graph.Execute(ctx, spec.Query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	if len(res.Errors) > 0 {
		gerr := &domain.GraphQueryError{Errors: res.Errors}
		logger.Error("Content graph reported errors", zap.Error(gerr))
		return nil, gerr
	}

	logger.Info("Running transformer")
	docs, err := applyTransform(ctx, spec.TransformOrIdentity(), res)
	if err != nil {
		return nil, err
	}

	logger.Info("Generated documents", zap.Int("documents", len(docs)))
	return docs, nil
}

// applyTransform calls a caller-supplied transform, turning a panic into an error.
func applyTransform(
	ctx context.Context, fn domquery.Transform, res domquery.Result,
) (docs []document.Document, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			docs = nil
			err = fmt.Errorf("%w: panic: %v", domain.ErrTransformFailed, rvr)
		}
	}()

	docs, err = fn(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransformFailed, err)
	}
	return docs, nil
}
