// Package rules loads declarative rule catalogs.
//
// A catalog is a sequence of rule definitions. Each definition names a check
// function that implements it, an opaque parameter bag interpreted only by
// that check, a severity, and optional element/location hints:
//
//	rules:
//	  - id: servers-https
//	    message: Servers must use HTTPS
//	    severity: high
//	    call:
//	      function: httpsServers
//	  - id: users-companions
//	    message: Resources exposing POST must be fully manageable
//	    severity: medium
//	    element: paths
//	    call:
//	      function: companionMethods
//	      functionParams:
//	        method: post
//	        companions: [get, put, delete]
//
// Catalogs are read-only once loaded and may be reused across runs.
package rules

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaslint/internal/severity"
)

// Definition is one rule record of a catalog.
type Definition struct {
	// ID is the opaque rule identifier reported as the source of findings
	ID string `yaml:"id" json:"id" toml:"id"`
	// Message is the human-readable message checks attach to findings
	Message string `yaml:"message" json:"message" toml:"message"`
	// Severity is the rule severity; missing or unknown values mean medium
	Severity severity.Severity `yaml:"severity" json:"severity" toml:"severity"`
	// Element is an optional hint naming the document element the rule targets
	Element StringList `yaml:"element,omitempty" json:"element,omitempty" toml:"element,omitempty"`
	// Location is an optional hint naming where the rule looks
	Location StringList `yaml:"location,omitempty" json:"location,omitempty" toml:"location,omitempty"`
	// Call binds the rule to a registered check
	Call Call `yaml:"call" json:"call" toml:"call"`
}

// Call names the check implementing a rule and its parameters.
type Call struct {
	Function       string `yaml:"function" json:"function" toml:"function"`
	FunctionParams Params `yaml:"functionParams,omitempty" json:"functionParams,omitempty" toml:"functionParams,omitempty"`
}

// String returns "id (function)".
func (d Definition) String() string {
	return fmt.Sprintf("%s (%s)", d.ID, d.Call.Function)
}

// Params returns the rule's parameter bag, never nil.
func (d Definition) Params() Params {
	if d.Call.FunctionParams == nil {
		return Params{}
	}
	return d.Call.FunctionParams
}

// StringList is a list of strings that also accepts a single string.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// UnmarshalJSON accepts a string or an array of strings.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = items
	return nil
}

// UnmarshalTOML accepts a string or an array of strings.
func (l *StringList) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*l = StringList{v}
		return nil
	case []any:
		items := make(StringList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a list of strings, got element %T", item)
			}
			items = append(items, s)
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("expected a string or a list of strings, got %T", v)
	}
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}
