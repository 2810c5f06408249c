package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/index"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
	"github.com/kailas-cloud/searchsync/internal/transform"
	"github.com/kailas-cloud/searchsync/internal/transport/azsearch"
	"github.com/kailas-cloud/searchsync/internal/usecase/schema"
)

// DefaultGraphEndpoint is the GraphQL endpoint of a local Gatsby develop server.
const DefaultGraphEndpoint = "http://localhost:8000/___graphql"

const redacted = "[redacted]"

// Config holds the searchsync configuration.
type Config struct {
	ServiceName string           `yaml:"serviceName" toml:"serviceName"`
	APIKey      string           `yaml:"apiKey" toml:"apiKey"`
	Endpoint    string           `yaml:"endpoint" toml:"endpoint"`     // overrides the endpoint derived from serviceName
	APIVersion  string           `yaml:"apiVersion" toml:"apiVersion"` // default: 2019-05-06
	Strategy    string           `yaml:"strategy" toml:"strategy"`     // recreate (default), upsert
	Verbose     bool             `yaml:"verbose" toml:"verbose"`
	IndexConfig index.Definition `yaml:"indexConfig" toml:"indexConfig"`
	Queries     []QueryConfig    `yaml:"queries" toml:"queries"`
	Graph       GraphConfig      `yaml:"graph" toml:"graph"`
	HTTP        HTTPConfig       `yaml:"http" toml:"http"`
	Logging     LoggingConfig    `yaml:"logging" toml:"logging"`
	Metrics     MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

// QueryConfig is one content graph query and how to shape its result.
type QueryConfig struct {
	Name        string            `yaml:"name" toml:"name"`
	Query       string            `yaml:"query" toml:"query"`
	Transformer *transform.Config `yaml:"transformer" toml:"transformer"`
}

// GraphConfig holds content graph endpoint settings.
type GraphConfig struct {
	Endpoint   string            `yaml:"endpoint" toml:"endpoint"`
	Headers    map[string]string `yaml:"headers" toml:"headers"`
	TimeoutSec int               `yaml:"timeoutSec" toml:"timeoutSec"`
}

// HTTPConfig holds search service client settings.
type HTTPConfig struct {
	TimeoutSec int `yaml:"timeoutSec" toml:"timeoutSec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error (default: determined by env)
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"` // node-exporter textfile path, empty disables
}

// Load reads configuration by environment name (local, dev, prod) from
// config/<env>.yaml, falling back to config/<env>.toml.
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from a YAML or TOML file, picked by extension.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg) //nolint:wrapcheck // wrapped by caller
	case ".yaml", ".yml", "":
		return yaml.Unmarshal(data, cfg) //nolint:wrapcheck // wrapped by caller
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = azsearch.DefaultAPIVersion
	}
	if c.Strategy == "" {
		c.Strategy = string(schema.StrategyRecreate)
	}
	if c.Endpoint == "" && c.ServiceName != "" {
		c.Endpoint = azsearch.EndpointForService(c.ServiceName)
	}
	if c.HTTP.TimeoutSec <= 0 {
		c.HTTP.TimeoutSec = 30
	}
	if c.Graph.Endpoint == "" {
		c.Graph.Endpoint = DefaultGraphEndpoint
	}
	if c.Graph.TimeoutSec <= 0 {
		c.Graph.TimeoutSec = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.ServiceName == "" && c.Endpoint == "" {
		return fmt.Errorf("serviceName is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("apiKey is required")
	}
	if !schema.Strategy(c.Strategy).IsValid() {
		return fmt.Errorf("strategy must be %q or %q, got %q", schema.StrategyRecreate, schema.StrategyUpsert, c.Strategy)
	}
	if err := c.IndexConfig.Validate(); err != nil {
		return fmt.Errorf("indexConfig: %w", err)
	}
	for i, q := range c.Queries {
		if strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("queries[%d]: %w", i, domain.ErrMissingQuery)
		}
		if err := q.Transformer.Validate(); err != nil {
			return fmt.Errorf("queries[%d].transformer: %w", i, err)
		}
	}
	return nil
}

// HTTPTimeout returns the search service request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSec) * time.Second
}

// GraphTimeout returns the content graph request timeout.
func (c *Config) GraphTimeout() time.Duration {
	return time.Duration(c.Graph.TimeoutSec) * time.Second
}

// Specs builds the query specifications with their bound transforms.
func (c *Config) Specs() ([]domquery.Spec, error) {
	specs := make([]domquery.Spec, 0, len(c.Queries))
	for i, q := range c.Queries {
		fn, err := transform.New(q.Transformer)
		if err != nil {
			return nil, fmt.Errorf("queries[%d].transformer: %w", i, err)
		}
		name := q.Name
		if name == "" {
			name = fmt.Sprintf("query-%d", i)
		}
		specs = append(specs, domquery.Spec{Name: name, Query: q.Query, Transform: fn})
	}
	return specs, nil
}

// Redacted returns a copy safe to log, with secrets masked.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = redacted
	}
	if len(c.Graph.Headers) > 0 {
		headers := make(map[string]string, len(c.Graph.Headers))
		for k := range c.Graph.Headers {
			headers[k] = redacted
		}
		c.Graph.Headers = headers
	}
	return c
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	candidates := []string{env + ".yaml", env + ".toml"}

	// 1. Check ./config/
	for _, name := range candidates {
		if path := filepath.Join("config", name); fileExists(path) {
			return path
		}
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	for _, name := range candidates {
		if path := filepath.Join(projectRoot, "config", name); fileExists(path) {
			return path
		}
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", candidates[0])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
