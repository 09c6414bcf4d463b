package httputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected bool
	}{
		{"default keyword", "default", true},
		{"extension x-custom", "x-custom", true},
		{"extension x-", "x-", true},

		{"range 1XX", "1XX", true},
		{"range 2XX", "2XX", true},
		{"range 5XX", "5XX", true},
		{"lower case range", "4xx", true},
		{"invalid range 0XX", "0XX", false},
		{"invalid range 6XX", "6XX", false},

		{"partial range 2X", "2X", false},
		{"partial range 20X", "20X", false},
		{"partial range X2X", "X2X", false},

		{"valid 100", "100", true},
		{"valid 204", "204", true},
		{"valid 418", "418", true},
		{"valid 599", "599", true},
		{"invalid 099", "099", false},
		{"invalid 600", "600", false},

		{"too short", "99", false},
		{"too long", "1000", false},
		{"empty string", "", false},
		{"whitespace", "   ", false},
		{"alphanumeric", "2a0", false},
		{"special char", "2-0", false},
		{"DEFAULT upper case", "DEFAULT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateStatusCode(tt.code), "ValidateStatusCode(%q)", tt.code)
		})
	}
}

func TestIsStandardStatusCode(t *testing.T) {
	for _, code := range []string{"200", "201", "204", "301", "404", "418", "429", "500", "503"} {
		assert.True(t, IsStandardStatusCode(code), code)
	}
	for _, code := range []string{"299", "420", "599", "2XX", "default", ""} {
		assert.False(t, IsStandardStatusCode(code), code)
	}
}

func TestIsSuccess(t *testing.T) {
	for _, code := range []string{"200", "204", "299", "2XX", "2xx"} {
		assert.True(t, IsSuccess(code), code)
	}
	for _, code := range []string{"301", "default", "2", "20X", "x-200"} {
		assert.False(t, IsSuccess(code), code)
	}
}

func TestCovers(t *testing.T) {
	tests := []struct {
		key, code string
		want      bool
	}{
		{"404", "404", true},
		{"4XX", "404", true},
		{"4xx", "429", true},
		{"4XX", "500", false},
		{"default", "404", false},
		{"4XX", "4XX", true},
		{"400", "404", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Covers(tt.key, tt.code), "Covers(%q, %q)", tt.key, tt.code)
	}
}

func TestIsValidMediaType(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/vnd.api+json", true},
		{"text/*", true},
		{"*/*", true},
		{"*/json", false},
		{"*/*/*", false},
		{"json", false},
		{"application/", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidMediaType(tt.mediaType), tt.mediaType)
	}
}

func TestMatchesMediaType(t *testing.T) {
	assert.True(t, MatchesMediaType("application/json", "application/json; charset=utf-8"))
	assert.True(t, MatchesMediaType("application/*", "application/problem+json"))
	assert.True(t, MatchesMediaType("*/*", "image/png"))
	assert.True(t, MatchesMediaType("Application/JSON", "application/json"))
	assert.False(t, MatchesMediaType("application/json", "application/xml"))
	assert.False(t, MatchesMediaType("text/*", "application/text"))
}
