package searchsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/transport/azsearch"
	"github.com/kailas-cloud/searchsync/internal/transport/graphql"
	"github.com/kailas-cloud/searchsync/internal/usecase/build"
	"github.com/kailas-cloud/searchsync/internal/usecase/publish"
	querysvc "github.com/kailas-cloud/searchsync/internal/usecase/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/schema"
)

// Client is the searchsync SDK entry point.
type Client struct {
	schemaSvc  *schema.Service
	publishSvc *publish.Service
	logger     *zap.Logger
	obs        *syncObserver
}

// New creates a Client. The target is set with WithService or WithEndpoint.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	endpoint := cfg.endpoint
	if endpoint == "" && cfg.serviceName != "" {
		endpoint = azsearch.EndpointForService(cfg.serviceName)
	}
	if endpoint == "" {
		return nil, fmt.Errorf("searchsync: %w: service name or endpoint required (use WithService or WithEndpoint)",
			ErrInvalidConfig)
	}
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("searchsync: %w: api key required", ErrInvalidConfig)
	}
	if cfg.strategy == "" {
		cfg.strategy = StrategyRecreate
	}
	if !cfg.strategy.IsValid() {
		return nil, fmt.Errorf("searchsync: %w: unknown strategy %q", ErrInvalidConfig, cfg.strategy)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	search, err := azsearch.NewClient(&azsearch.Config{
		Endpoint:   endpoint,
		APIKey:     cfg.apiKey,
		APIVersion: cfg.apiVersion,
		HTTPClient: cfg.httpClient,
		Verbose:    cfg.verbose,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("searchsync: %w", err)
	}

	var obs *syncObserver
	if cfg.logger != nil || cfg.metricsReg != nil {
		obs, err = newSyncObserver(cfg.logger, cfg.metricsReg)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		schemaSvc:  schema.New(search, cfg.strategy),
		publishSvc: publish.New(search).WithVerbose(cfg.verbose),
		logger:     logger,
		obs:        obs,
	}, nil
}

// Strategy returns the index strategy in use.
func (c *Client) Strategy() Strategy {
	return c.schemaSvc.Strategy()
}

// ApplyIndex validates def and brings the remote index in line with it.
func (c *Client) ApplyIndex(ctx context.Context, def Definition) error {
	start := time.Now()
	err := c.applyIndex(c.withLogger(ctx), def)
	c.obs.indexApplied(def, c.Strategy(), start, err)
	return err
}

func (c *Client) applyIndex(ctx context.Context, def Definition) error {
	if err := def.Validate(); err != nil {
		return err //nolint:wrapcheck // already carries the index name
	}
	return c.schemaSvc.Apply(ctx, def) //nolint:wrapcheck // already carries the index name
}

// Publish uploads docs to an existing index as one batch and returns how
// many documents were sent. An empty batch is skipped.
func (c *Client) Publish(ctx context.Context, indexName string, docs []Document) (int, error) {
	start := time.Now()
	n, err := c.publishSvc.Publish(c.withLogger(ctx), indexName, docs)
	c.obs.published(indexName, n, start, err)
	return n, err //nolint:wrapcheck // already carries the index name
}

// Sync ensures the index, runs every query against graph and uploads the
// resulting documents. Queries run concurrently and all of them run to
// completion; the run fails if any query fails. The report is returned in
// both cases.
func (c *Client) Sync(ctx context.Context, graph ContentGraph, def Definition, queries ...Query) (Report, error) {
	start := time.Now()
	if graph == nil {
		err := fmt.Errorf("searchsync: %w: content graph is required", ErrInvalidConfig)
		report := Report{State: StateFailed, Index: def.Name, Duration: time.Since(start)}
		c.obs.synced(report, err)
		return report, err
	}

	orchestrator := build.New(c.schemaSvc, querysvc.New(graph), c.publishSvc)
	report, err := orchestrator.Run(c.withLogger(ctx), def, queries)
	c.obs.synced(report, err)
	return report, err //nolint:wrapcheck // already carries the index name
}

// withLogger attaches the client logger unless ctx already carries one.
func (c *Client) withLogger(ctx context.Context) context.Context {
	if _, ok := logpkg.Lookup(ctx); ok {
		return ctx
	}
	return logpkg.ContextWithLogger(ctx, c.logger)
}

// GraphOption configures NewGraphClient.
type GraphOption func(*graphql.Config)

// WithGraphHeaders sets extra headers sent with every query.
func WithGraphHeaders(headers map[string]string) GraphOption {
	return func(c *graphql.Config) {
		c.Headers = headers
	}
}

// WithGraphHTTPClient sets the HTTP client used for queries.
func WithGraphHTTPClient(hc *http.Client) GraphOption {
	return func(c *graphql.Config) {
		c.HTTPClient = hc
	}
}

// WithGraphLogger sets the logger used by the graph client.
func WithGraphLogger(l *zap.Logger) GraphOption {
	return func(c *graphql.Config) {
		c.Logger = l
	}
}

// NewGraphClient returns a ContentGraph that posts queries to a GraphQL
// HTTP endpoint.
func NewGraphClient(endpoint string, opts ...GraphOption) (ContentGraph, error) {
	cfg := &graphql.Config{Endpoint: endpoint}
	for _, o := range opts {
		o(cfg)
	}
	gc, err := graphql.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("searchsync: %w", errors.Join(ErrInvalidConfig, err))
	}
	return gc, nil
}
