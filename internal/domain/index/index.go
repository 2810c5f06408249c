package index

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// CORSOptions is the index CORS policy.
type CORSOptions struct {
	AllowedOrigins  []string `json:"allowedOrigins" yaml:"allowedOrigins" toml:"allowedOrigins"`
	MaxAgeInSeconds int      `json:"maxAgeInSeconds,omitempty" yaml:"maxAgeInSeconds" toml:"maxAgeInSeconds"`
}

// Definition is the declarative schema of a remote index. It is sent to the
// service as-is, so the JSON shape follows the service's index body.
type Definition struct {
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Fields      []Field      `json:"fields" yaml:"fields" toml:"fields"`
	CORSOptions *CORSOptions `json:"corsOptions,omitempty" yaml:"corsOptions,omitempty" toml:"corsOptions,omitempty"`
}

// Validate checks the definition before it is sent anywhere.
// Name: ^[a-z0-9][a-z0-9-]*$, 1-128 chars. Fields: unique names, exactly one key.
func (d Definition) Validate() error {
	if err := d.validate(); err != nil {
		return fmt.Errorf("index %q: %w: %w", d.Name, domain.ErrInvalidSchema, err)
	}
	return nil
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if len(d.Name) > 128 {
		return fmt.Errorf("index name too long (max 128)")
	}
	if !nameRegex.MatchString(d.Name) {
		return fmt.Errorf("index name must be lowercase alphanumeric with hyphens")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	seen := make(map[string]bool, len(d.Fields))
	keys := 0
	for _, f := range d.Fields {
		if err := f.validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = true
		if f.Key {
			keys++
		}
	}
	if keys != 1 {
		return fmt.Errorf("exactly one key field is required, got %d", keys)
	}

	if d.CORSOptions != nil && d.CORSOptions.MaxAgeInSeconds < 0 {
		return fmt.Errorf("corsOptions.maxAgeInSeconds must not be negative")
	}
	return nil
}

// KeyField returns the name of the key field, or "" if none is marked.
func (d Definition) KeyField() string {
	for _, f := range d.Fields {
		if f.Key {
			return f.Name
		}
	}
	return ""
}
