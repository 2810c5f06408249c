package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/query"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// Config holds the content graph endpoint settings.
type Config struct {
	Endpoint   string
	Headers    map[string]string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client executes GraphQL queries over HTTP, e.g. against the GraphQL
// server a static site generator exposes during development.
type Client struct {
	endpoint string
	headers  map[string]string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a content graph client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("graphql: endpoint is required")
	}
	c := &Client{
		endpoint: cfg.Endpoint,
		headers:  cfg.Headers,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

type request struct {
	Query string `json:"query"`
}

// Execute runs one query. Errors reported inside a 200 reply are returned
// in Result.Errors, not as an error; the caller decides what they mean.
func (c *Client) Execute(ctx context.Context, q string) (query.Result, error) {
	res, err := c.execute(ctx, q)
	status := err
	if status == nil && len(res.Errors) > 0 {
		status = &domain.GraphQueryError{Errors: res.Errors}
	}
	metrics.GraphQueriesTotal.WithLabelValues(metrics.StatusLabel(status)).Inc()
	return res, err
}

func (c *Client) execute(ctx context.Context, q string) (query.Result, error) {
	payload, err := json.Marshal(request{Query: q})
	if err != nil {
		return query.Result{}, fmt.Errorf("graphql: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return query.Result{}, fmt.Errorf("graphql: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return query.Result{}, fmt.Errorf("graphql: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return query.Result{}, fmt.Errorf("graphql: read response: %w", err)
	}

	c.logger.Debug("graphql query executed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_bytes", len(body)),
	)

	var res query.Result
	decodeErr := json.Unmarshal(body, &res)

	// GraphQL servers may answer 4xx with a well-formed errors list.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && len(res.Errors) > 0 {
				return res, nil
		}
		return query.Result{}, fmt.Errorf("graphql: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if decodeErr != nil {
		return query.Result{}, fmt.Errorf("graphql: decode response: %w", decodeErr)
	}

	return res, nil
}
