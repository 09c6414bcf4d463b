package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaslint/internal/severity"
	"github.com/erraggy/oaslint/oaserrors"
)

const catalogYAML = `rules:
  - id: servers-https
    message: Servers must use HTTPS
    severity: High
    call:
      function: httpsServers
  - id: users-companions
    message: Resources exposing POST must be fully manageable
    element: paths
    location: [paths, operations]
    call:
      function: companionMethods
      functionParams:
        method: post
        companions: [get, put, delete]
        limit: 3
  - id: odd
    message: Unknown severity
    severity: blocker
    call:
      function: doesNotExist
`

const catalogJSON = `[
  {"id": "servers-https", "message": "Servers must use HTTPS", "severity": "critical",
   "call": {"function": "httpsServers"}},
  {"id": "casing", "message": "camelCase", "severity": "low", "element": ["schemas"],
   "call": {"function": "propertyCasing", "functionParams": {"casing": "camel", "ignore": ["_links"]}}}
]`

const catalogTOML = `[[rules]]
id = "servers-https"
message = "Servers must use HTTPS"
severity = "high"
element = "servers"

[rules.call]
function = "httpsServers"

[[rules]]
id = "breaking"
message = "No breaking changes"

[rules.call]
function = "noBreakingChanges"

[rules.call.functionParams]
baseline = "pets"
timeout = "2s"
retries = 2
`

func TestDecodeYAML(t *testing.T) {
	c, err := Decode([]byte(catalogYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, c, 3)

	assert.Equal(t, "servers-https", c[0].ID)
	assert.Equal(t, severity.SeverityHigh, c[0].Severity)
	assert.Equal(t, "httpsServers", c[0].Call.Function)
	assert.NotNil(t, c[0].Params(), "missing params yield an empty bag")

	assert.Equal(t, severity.SeverityMedium, c[1].Severity, "missing severity defaults to medium")
	assert.Equal(t, StringList{"paths"}, c[1].Element)
	assert.Equal(t, StringList{"paths", "operations"}, c[1].Location)
	assert.Equal(t, []string{"get", "put", "delete"}, c[1].Params().Strings("companions"))
	n, ok := c[1].Params().Int("limit")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	assert.Equal(t, severity.SeverityMedium, c[2].Severity, "unknown severity defaults to medium")
}

func TestDecodeJSON(t *testing.T) {
	c, err := Decode([]byte(catalogJSON), FormatUnknown)
	require.NoError(t, err)
	require.Len(t, c, 2)

	assert.Equal(t, severity.SeverityCritical, c[0].Severity)
	assert.Equal(t, severity.SeverityLow, c[1].Severity)
	assert.Equal(t, StringList{"schemas"}, c[1].Element)
	assert.Equal(t, "camel", c[1].Params().StringOr("casing", ""))
	assert.Equal(t, []string{"_links"}, c[1].Params().Strings("ignore"))
}

func TestDecodeTOML(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatUnknown} {
		t.Run(format.String(), func(t *testing.T) {
			c, err := Decode([]byte(catalogTOML), format)
			require.NoError(t, err)
			require.Len(t, c, 2)

			assert.Equal(t, severity.SeverityHigh, c[0].Severity)
			assert.Equal(t, StringList{"servers"}, c[0].Element)
			assert.Equal(t, "noBreakingChanges", c[1].Call.Function)

			p := c[1].Params()
			assert.Equal(t, "pets", p.StringOr("baseline", ""))
			d, ok := p.Duration("timeout")
			assert.True(t, ok)
			assert.Equal(t, 2*time.Second, d)
			n, ok := p.Int("retries")
			assert.True(t, ok)
			assert.Equal(t, 2, n)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"scalar root", "just a string", FormatYAML},
		{"bad yaml", "rules: [unterminated", FormatYAML},
		{"bad element", "- id: x\n  element: {a: b}\n", FormatYAML},
		{"bad toml", "[[rules]\nid = 1", FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, oaserrors.ErrConfig)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	c, err := Decode(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, c)

	c, err = Decode([]byte("rules: []\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(catalogTOML), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"servers-https", "breaking"}, c.IDs())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/rules.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("rules.json"))
	assert.Equal(t, FormatTOML, FormatFromPath("rules.toml"))
	assert.Equal(t, FormatUnknown, FormatFromPath("rules"))
}

func TestValidate(t *testing.T) {
	ok := Catalog{{ID: "a"}, {ID: "b"}}
	assert.NoError(t, ok.Validate())

	bad := Catalog{{ID: "a"}, {ID: ""}, {ID: "a"}}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
	assert.Contains(t, err.Error(), "rule has no id")
	assert.Contains(t, err.Error(), "duplicate rule id at index 2")
}

func TestFilter(t *testing.T) {
	c := Catalog{
		{ID: "a", Severity: severity.SeverityLow},
		{ID: "b", Severity: severity.SeverityLow},
		{ID: "c", Severity: severity.SeverityLow},
	}
	cfg := NewConfig().Disable("b").SetSeverity("c", severity.SeverityCritical)

	got := c.Filter(cfg)
	assert.Equal(t, []string{"a", "c"}, got.IDs())
	assert.Equal(t, severity.SeverityCritical, got[1].Severity)
	assert.Equal(t, severity.SeverityLow, c[2].Severity, "the source catalog is untouched")

	assert.Equal(t, c, c.Filter(nil))

	var nilCfg *Config
	assert.False(t, nilCfg.IsDisabled("a"))
	assert.Equal(t, severity.SeverityHigh, nilCfg.SeverityFor("a", severity.SeverityHigh))
}

func TestGet(t *testing.T) {
	c := Catalog{{ID: "a", Message: "first"}}
	d, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "first", d.Message)
	_, ok = c.Get("z")
	assert.False(t, ok)
}
