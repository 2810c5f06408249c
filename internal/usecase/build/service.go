package build

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// State is a step of a sync run. Runs move strictly forward:
// idle -> indexing-schema -> querying-and-publishing -> done | failed.
type State string

// Run states.
const (
	StateIdle           State = "idle"
	StateIndexingSchema State = "indexing-schema"
	StateQuerying       State = "querying-and-publishing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// QueryReport is the outcome of one query task.
type QueryReport struct {
	Name      string
	Documents int
	Duration  time.Duration
	Err       error
}

// Report summarizes a sync run.
type Report struct {
	RunID    string
	Index    string
	State    State
	Queries  []QueryReport
	Duration time.Duration
}

// Documents returns the total number of uploaded documents.
func (r Report) Documents() int {
	n := 0
	for _, q := range r.Queries {
		n += q.Documents
	}
	return n
}

// Service sequences the index step and the per-query tasks.
type Service struct {
	schema    IndexManager
	runner    QueryRunner
	publisher Publisher
	onState   func(State)
}

// New creates a build orchestrator.
func New(schema IndexManager, runner QueryRunner, publisher Publisher) *Service {
	return &Service{schema: schema, runner: runner, publisher: publisher}
}

// WithStateHook registers a callback invoked on every state change.
func (s *Service) WithStateHook(fn func(State)) *Service {
	s.onState = fn
	return s
}

// Run ensures the index, then runs every query and publishes its documents
// concurrently. All tasks run to completion; the first failure fails the run.
// Documents already uploaded by other tasks stay in the index.
func (s *Service) Run(ctx context.Context, def index.Definition, specs []domquery.Spec) (Report, error) {
	start := time.Now()
	report := Report{
		RunID:   uuid.NewString(),
		Index:   def.Name,
		State:   StateIdle,
		Queries: make([]QueryReport, len(specs)),
	}

	ctx = logpkg.With(ctx, zap.String("run_id", report.RunID))
	logger := logpkg.FromContext(ctx)

	err := s.run(ctx, &report, def, specs)
	report.Duration = time.Since(start)
	if err != nil {
		s.transition(&report, StateFailed)
		metrics.BuildRunsTotal.WithLabelValues(string(StateFailed)).Inc()
		logger.Error("Failed to sync index", zap.String("index", def.Name), zap.Error(err))
		return report, fmt.Errorf("sync index %q: %w", def.Name, err)
	}

	s.transition(&report, StateDone)
	metrics.BuildRunsTotal.WithLabelValues(string(StateDone)).Inc()
	logger.Info("Synced index",
		zap.String("index", def.Name),
		zap.Int("queries", len(specs)),
		zap.Int("documents", report.Documents()),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) run(ctx context.Context, report *Report, def index.Definition, specs []domquery.Spec) error {
	logger := logpkg.FromContext(ctx)

	if err := resolve(def, specs); err != nil {
		return err
	}

	s.transition(report, StateIndexingSchema)
	logger.Info("Rebuild index", zap.String("index", def.Name))
	if err := s.schema.Apply(ctx, def); err != nil {
		return err
	}

	s.transition(report, StateQuerying)
	logger.Info("Queries to index", zap.Int("queries", len(specs)))

	// No derived context: a failing task must not cancel its siblings.
	var g errgroup.Group
	for i, spec := range specs {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("query-%d", i)
		}
		report.Queries[i].Name = name

		g.Go(func() error {
			qctx := logpkg.With(ctx, zap.String("query", name))
			qstart := time.Now()
			n, err := s.runQuery(qctx, def.Name, spec)
			report.Queries[i].Documents = n
			report.Queries[i].Duration = time.Since(qstart)
			report.Queries[i].Err = err
			if err != nil {
				return fmt.Errorf("query %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait() //nolint:wrapcheck // task errors are already wrapped
}

// resolve rejects definitions and queries that cannot succeed, before any
// network call.
func resolve(def index.Definition, specs []domquery.Spec) error {
	if err := def.Validate(); err != nil {
		return err
	}
	for i, spec := range specs {
		if strings.TrimSpace(spec.Query) == "" {
			return fmt.Errorf("query %d: %w", i, domain.ErrMissingQuery)
		}
	}
	return nil
}

func (s *Service) runQuery(ctx context.Context, indexName string, spec domquery.Spec) (int, error) {
	docs, err := s.runner.Run(ctx, spec)
	if err != nil {
		return 0, err
	}
	return s.publisher.Publish(ctx, indexName, docs)
}

func (s *Service) transition(report *Report, next State) {
	report.State = next
	if s.onState != nil {
		s.onState(next)
	}
}
