package searchsync

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	serviceName string
	endpoint    string
	apiKey      string
	apiVersion  string
	httpClient  *http.Client
	strategy    Strategy
	verbose     bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithService targets the search service with the given name using an
// admin API key.
func WithService(name, apiKey string) Option {
	return func(c *clientConfig) {
		c.serviceName = name
		c.apiKey = apiKey
	}
}

// WithEndpoint targets an explicit endpoint instead of the one derived
// from the service name.
func WithEndpoint(endpoint, apiKey string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
		c.apiKey = apiKey
	}
}

// WithAPIVersion overrides the REST API version. Default: 2019-05-06.
func WithAPIVersion(version string) Option {
	return func(c *clientConfig) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets the HTTP client used for search service calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithStrategy selects how ApplyIndex and Sync bring the index in line.
// Default: StrategyRecreate.
func WithStrategy(s Strategy) Option {
	return func(c *clientConfig) {
		c.strategy = s
	}
}

// WithVerbose logs request and response payloads (API key redacted) and
// the per-document results of every upload.
func WithVerbose(verbose bool) Option {
	return func(c *clientConfig) {
		c.verbose = verbose
	}
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsReg = reg
	}
}
