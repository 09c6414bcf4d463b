package rules

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/oaserrors"
)

// Catalog is an ordered list of rule definitions. Catalog order is the order
// in which findings are reported.
type Catalog []Definition

// Format identifies a catalog encoding.
type Format int

const (
	// FormatUnknown means the format is detected from the content.
	FormatUnknown Format = iota
	// FormatYAML is a YAML catalog.
	FormatYAML
	// FormatJSON is a JSON catalog.
	FormatJSON
	// FormatTOML is a TOML catalog using [[rules]] tables.
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

type wrapped struct {
	Rules Catalog `yaml:"rules" json:"rules" toml:"rules"`
}

// Decode parses a catalog. The input is either a bare list of definitions or
// a mapping with a "rules" key. With FormatUnknown, a document with a
// [[rules]] table is read as TOML, one starting with '[' or '{' as JSON, and
// anything else as YAML.
func Decode(data []byte, format Format) (Catalog, error) {
	if format == FormatUnknown {
		format = sniff(data)
	}

	var (
		c   Catalog
		err error
	)
	switch format {
	case FormatTOML:
		var w wrapped
		if _, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&w); err == nil {
			c = w.Rules
		}
	default:
		// JSON is a subset of YAML 1.2; one decoder serves both.
		c, err = decodeYAML(data)
	}
	if err != nil {
		return nil, &oaserrors.ConfigError{
			Option:  "rules",
			Message: fmt.Sprintf("invalid %s rule catalog", format),
			Cause:   err,
		}
	}
	return c, nil
}

func decodeYAML(data []byte) (Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	node := &root
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}

	switch node.Kind {
	case yaml.SequenceNode:
		var c Catalog
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		return c, nil
	case yaml.MappingNode:
		var w wrapped
		if err := node.Decode(&w); err != nil {
			return nil, err
		}
		return w.Rules, nil
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
	}
	return nil, errors.New("expected a list of rules or a mapping with a rules key")
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		if string(bytes.TrimSpace(line)) == "[[rules]]" {
			return FormatTOML
		}
	}
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and decodes a catalog file, inferring the format from the
// extension.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "rules", Value: path, Message: "cannot read rule catalog", Cause: err}
	}
	return Decode(data, FormatFromPath(path))
}

// Validate reports definitions without an ID and duplicate IDs.
// Unknown check functions are not an error: they are filtered at bind time.
func (c Catalog) Validate() error {
	var errs []error
	seen := make(map[string]int, len(c))
	for i, d := range c {
		if strings.TrimSpace(d.ID) == "" {
			errs = append(errs, &oaserrors.ConfigError{
				Option:  "rules",
				Value:   i,
				Message: "rule has no id",
			})
			continue
		}
		if first, dup := seen[d.ID]; dup {
			errs = append(errs, &oaserrors.ConfigError{
				Option:  "rules",
				Value:   d.ID,
				Message: fmt.Sprintf("duplicate rule id at index %d (first defined at index %d)", i, first),
			})
			continue
		}
		seen[d.ID] = i
	}
	return errors.Join(errs...)
}

// IDs returns the rule IDs in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, d := range c {
		ids[i] = d.ID
	}
	return ids
}

// Get returns the definition with the given ID.
func (c Catalog) Get(id string) (Definition, bool) {
	for _, d := range c {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Filter returns a copy of c without the rules cfg disables and with its
// severity overrides applied. A nil cfg returns c unchanged.
func (c Catalog) Filter(cfg *Config) Catalog {
	if cfg == nil {
		return c
	}
	out := make(Catalog, 0, len(c))
	for _, d := range c {
		if cfg.IsDisabled(d.ID) {
			continue
		}
		d.Severity = cfg.SeverityFor(d.ID, d.Severity)
		out = append(out, d)
	}
	return out
}

// Config controls which rules are enabled and their severity.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the catalog severity of rules
	SeverityOverrides map[string]severity.Severity
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]severity.Severity),
	}
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[ruleID]
}

// SeverityFor returns the severity for a rule, applying any override.
func (c *Config) SeverityFor(ruleID string, def severity.Severity) severity.Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[ruleID]; ok {
			return sev
		}
	}
	return def
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, sev severity.Severity) *Config {
	c.SeverityOverrides[ruleID] = sev
	return c
}
