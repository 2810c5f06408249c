package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// DefaultAPIVersion is the REST API version every call is pinned to.
const DefaultAPIVersion = "2019-05-06"

// Operation names used in logs and metric labels.
const (
	OpDeleteIndex    = "delete_index"
	OpPutIndex       = "put_index"
	OpIndexDocuments = "index_documents"
)

// EndpointForService returns the public endpoint of a named search service.
func EndpointForService(serviceName string) string {
	return fmt.Sprintf("https://%s.search.windows.net", serviceName)
}

// Config holds the search service client settings.
type Config struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	HTTPClient *http.Client
	Verbose    bool
	Logger     *zap.Logger
}

// Client is a minimal REST client for the search service index and
// document endpoints.
type Client struct {
	base       *url.URL
	apiKey     string
	apiVersion string
	http       *http.Client
	verbose    bool
	logger     *zap.Logger
}

// NewClient creates a search service client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azsearch: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("azsearch: api key is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("azsearch: parse endpoint: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("azsearch: endpoint %q must be an absolute URL", cfg.Endpoint)
	}

	c := &Client{
		base:       base,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		http:       cfg.HTTPClient,
		verbose:    cfg.Verbose,
		logger:     cfg.Logger,
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

func (c *Client) url(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = url.Values{"api-version": []string{c.apiVersion}}.Encode()
	return u.String()
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("api-key", c.apiKey)
	h.Set("Content-Type", "application/json")
	return h
}

// do sends one request and returns the response body of a 2xx reply.
// Any other status becomes a *domain.APIError.
func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, int, error) {
	target := c.url(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: encode body: %w", op, err)
		}
	}

	if c.verbose {
		c.logger.Info("search request",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", target),
			zap.Any("headers", redact(c.headers())),
			zap.ByteString("body", payload),
		)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header = c.headers()

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.SearchRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, resp.StatusCode, fmt.Errorf("%s: read response: %w", op, err)
	}

	if c.verbose {
		c.logger.Info("search response",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SearchRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, resp.StatusCode, fmt.Errorf("%s: %w", op, parseAPIError(resp.StatusCode, respBody))
	}

	metrics.SearchRequestsTotal.WithLabelValues(op, "success").Inc()
	return respBody, resp.StatusCode, nil
}

// parseAPIError decodes the service error envelope {"error":{"code","message"}}.
func parseAPIError(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{StatusCode: status, Body: body}
	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
	}
	if apiErr.Message == "" && len(body) == 0 {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func redact(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	if _, ok := out["Api-Key"]; ok {
		out["Api-Key"] = "[redacted]"
	}
	return out
}
