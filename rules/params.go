package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Params is the opaque parameter bag of a rule. Only the bound check
// interprets it; the accessors below absorb the numeric and list shapes the
// YAML, JSON and TOML decoders produce.
type Params map[string]any

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a string parameter.
func (p Params) String(key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// StringOr returns a string parameter or def when absent or empty.
func (p Params) StringOr(key, def string) string {
	if s, ok := p.String(key); ok && s != "" {
		return s
	}
	return def
}

// Strings returns a list parameter. A single string is a one-element list;
// a comma-separated string is split.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}

// Bool returns a boolean parameter. Strings accepted by strconv.ParseBool work too.
func (p Params) Bool(key string) (bool, bool) {
	switch v := p[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// BoolOr returns a boolean parameter or def.
func (p Params) BoolOr(key string, def bool) bool {
	if b, ok := p.Bool(key); ok {
		return b
	}
	return def
}

// Int returns an integer parameter.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Duration returns a duration parameter. Strings use time.ParseDuration
// syntax; bare numbers are seconds.
func (p Params) Duration(key string) (time.Duration, bool) {
	if s, ok := p[key].(string); ok {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		return d, err == nil
	}
	if f, ok := p[key].(float64); ok {
		return time.Duration(f * float64(time.Second)), true
	}
	if n, ok := p.Int(key); ok {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

// Map returns a nested parameter bag.
func (p Params) Map(key string) Params {
	switch v := p[key].(type) {
	case map[string]any:
		return Params(v)
	case Params:
		return v
	default:
		return nil
	}
}
