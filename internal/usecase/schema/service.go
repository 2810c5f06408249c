package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
)

// Strategy selects how the remote index is brought in line with the definition.
type Strategy string

const (
	// StrategyRecreate deletes the index (ignoring failures) and creates it again.
	// Required when the key field or other immutable attributes change.
	StrategyRecreate Strategy = "recreate"
	// StrategyUpsert creates or updates the index in a single call.
	StrategyUpsert Strategy = "upsert"
)

// IsValid checks if the strategy is supported.
func (s Strategy) IsValid() bool {
	return s == StrategyRecreate || s == StrategyUpsert
}

// Service ensures the remote index matches a definition.
type Service struct {
	client   IndexClient
	strategy Strategy
}

// New creates an index manager. An empty strategy means StrategyRecreate.
func New(client IndexClient, strategy Strategy) *Service {
	if strategy == "" {
		strategy = StrategyRecreate
	}
	return &Service{client: client, strategy: strategy}
}

// Strategy returns the configured strategy.
func (s *Service) Strategy() Strategy { return s.strategy }

// Apply makes the remote index match def. Delete failures are warnings;
// a failed create/replace is returned as is, without retry.
func (s *Service) Apply(ctx context.Context, def index.Definition) error {
	if !s.strategy.IsValid() {
		return fmt.Errorf("unknown index strategy %q: %w", s.strategy, domain.ErrInvalidConfig)
	}
	logger := logpkg.FromContext(ctx).With(
		zap.String("index", def.Name),
		zap.String("strategy", string(s.strategy)),
	)

	if s.strategy == StrategyRecreate {
		s.deleteBestEffort(ctx, logger, def.Name)
	}

	if err := s.client.PutIndex(ctx, def); err != nil {
		logger.Error("Failed to create index", zap.Error(err))
		return fmt.Errorf("create index %q: %w", def.Name, err)
	}
	logger.Info("Created index")
	return nil
}

func (s *Service) deleteBestEffort(ctx context.Context, logger *zap.Logger, name string) {
	err := s.client.DeleteIndex(ctx, name)
	switch {
	case err == nil:
		logger.Info("Deleted index")
	case errors.Is(err, domain.ErrIndexNotFound):
		logger.Warn("Index did not exist, nothing to delete", zap.Error(err))
	default:
		logger.Warn("Failed to delete index, continuing", zap.Error(err))
	}
}
