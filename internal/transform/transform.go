// Package transform builds query transforms from configuration.
//
// Two kinds exist. "identity" passes array data through unchanged.
// "nodes" walks a dotted path to a list (unwrapping GraphQL edge "node"
// objects) and shapes one document per element.
package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
	domquery "github.com/kailas-cloud/searchsync/internal/domain/query"
)

// Transform kinds.
const (
	KindIdentity = "identity"
	KindNodes    = "nodes"
)

// Excerpt builds a short plain-text summary from the first non-empty
// source field.
type Excerpt struct {
	Target string   `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
	From   []string `json:"from" yaml:"from" toml:"from"`
	Length int      `json:"length,omitempty" yaml:"length,omitempty" toml:"length,omitempty"`
}

// Pluck maps a list of objects to the list of one of their keys.
type Pluck struct {
	From string `json:"from" yaml:"from" toml:"from"`
	Key  string `json:"key" yaml:"key" toml:"key"`
}

// Config describes a declarative transform.
type Config struct {
	Kind string `json:"kind" yaml:"kind" toml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	// Fields maps target names to node fields. Empty copies every field.
	Fields    map[string]string `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	StripHTML []string          `json:"stripHtml,omitempty" yaml:"stripHtml,omitempty" toml:"stripHtml,omitempty"`
	Excerpt   *Excerpt          `json:"excerpt,omitempty" yaml:"excerpt,omitempty" toml:"excerpt,omitempty"`
	// Permalink is a template such as "https://example.com/{slug}".
	Permalink string           `json:"permalink,omitempty" yaml:"permalink,omitempty" toml:"permalink,omitempty"`
	Pluck     map[string]Pluck `json:"pluck,omitempty" yaml:"pluck,omitempty" toml:"pluck,omitempty"`
	Defaults  map[string]any   `json:"defaults,omitempty" yaml:"defaults,omitempty" toml:"defaults,omitempty"`
}

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

// Validate checks the transform configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case "", KindIdentity:
		return nil
	case KindNodes:
	default:
		return fmt.Errorf("%w: unknown transformer kind %q", domain.ErrInvalidConfig, c.Kind)
	}

	if c.Excerpt != nil {
		if len(c.Excerpt.From) == 0 {
			return fmt.Errorf("%w: excerpt requires at least one source field", domain.ErrInvalidConfig)
		}
		if c.Excerpt.Length < 0 {
			return fmt.Errorf("%w: excerpt length must not be negative", domain.ErrInvalidConfig)
		}
	}
	for target, p := range c.Pluck {
		if p.From == "" || p.Key == "" {
			return fmt.Errorf("%w: pluck %q requires from and key", domain.ErrInvalidConfig, target)
		}
	}
	return nil
}

// New returns the transform described by cfg. A nil config or an empty
// kind yields Identity.
func New(cfg *Config) (domquery.Transform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil || cfg.Kind == "" || cfg.Kind == KindIdentity {
		return domquery.Identity, nil
	}
	n := &nodes{cfg: *cfg}
	return n.apply, nil
}

type nodes struct {
	cfg Config
}

func (n *nodes) apply(_ context.Context, res domquery.Result) ([]document.Document, error) {
	var data any
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}

	list, err := walk(data, n.cfg.Path)
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, 0, len(list))
	for i, item := range list {
		node, ok := unwrapNode(item)
		if !ok {
			return nil, fmt.Errorf("item %d at %q is not an object", i, n.cfg.Path)
		}
		doc, err := n.shape(node)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (n *nodes) shape(node map[string]any) (document.Document, error) {
	doc := make(document.Document, len(node))
	if len(n.cfg.Fields) == 0 {
		for k, v := range node {
			doc[k] = v
		}
	} else {
		for target, source := range n.cfg.Fields {
			v, _ := lookup(node, source)
			doc[target] = v
		}
	}

	for _, field := range n.cfg.StripHTML {
		switch v := doc[field].(type) {
		case nil:
			doc[field] = ""
		case string:
			doc[field] = StripHTML(v)
		}
	}

	if ex := n.cfg.Excerpt; ex != nil {
		target := ex.Target
		if target == "" {
			target = "excerpt"
		}
		doc[target] = truncateRunes(StripHTML(firstString(node, ex.From)), ex.Length)
	}

	if n.cfg.Permalink != "" {
		link, err := expand(n.cfg.Permalink, node)
		if err != nil {
			return nil, err
		}
		doc["permalink"] = link
	}

	for _, target := range sortedKeys(n.cfg.Pluck) {
		p := n.cfg.Pluck[target]
		doc[target] = pluck(node, p)
	}

	for k, v := range n.cfg.Defaults {
		if cur, ok := doc[k]; !ok || cur == nil {
			doc[k] = v
		}
	}
	return doc, nil
}

// walk follows a dotted path and returns the list found there.
func walk(data any, path string) ([]any, error) {
	cur := data
	if path != "" {
		for _, seg := range strings.Split(path, ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("path %q: segment %q is not inside an object", path, seg)
			}
			if cur, ok = m[seg]; !ok {
				return nil, fmt.Errorf("path %q: %q not found", path, seg)
			}
		}
	}
	switch v := cur.(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("path %q: expected a list, got %T", path, cur)
	}
}

func unwrapNode(item any) (map[string]any, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	if node, ok := m["node"].(map[string]any); ok {
		return node, true
	}
	return m, true
}

func lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func firstString(node map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := node[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func expand(tmpl string, node map[string]any) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := lookup(node, name)
		if !ok || v == nil {
			if missing == "" {
				missing = name
			}
			return ""
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return "", fmt.Errorf("permalink: field %q is missing", missing)
	}
	return out, nil
}

func pluck(node map[string]any, p Pluck) []string {
	items, _ := node[p.From].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := obj[p.Key]; ok && v != nil {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
