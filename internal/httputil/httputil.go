// Package httputil classifies the HTTP status codes and media types that
// appear as keys in OpenAPI documents.
package httputil

import (
	"mime"
	"strconv"
	"strings"
)

const (
	statusCodeLength = 3
	minStatusCode    = 100
	maxStatusCode    = 599
)

// standardStatusCodes holds the RFC 9110 registered status codes.
var standardStatusCodes = map[string]bool{
	// 1xx Informational
	"100": true, "101": true, "102": true, "103": true,
	// 2xx Success
	"200": true, "201": true, "202": true, "203": true, "204": true, "205": true,
	"206": true, "207": true, "208": true, "226": true,
	// 3xx Redirection
	"300": true, "301": true, "302": true, "303": true, "304": true, "305": true,
	"307": true, "308": true,
	// 4xx Client Error
	"400": true, "401": true, "402": true, "403": true, "404": true, "405": true,
	"406": true, "407": true, "408": true, "409": true, "410": true, "411": true,
	"412": true, "413": true, "414": true, "415": true, "416": true, "417": true,
	"418": true, "421": true, "422": true, "423": true, "424": true, "425": true,
	"426": true, "428": true, "429": true, "431": true, "451": true,
	// 5xx Server Error
	"500": true, "501": true, "502": true, "503": true, "504": true, "505": true,
	"506": true, "507": true, "508": true, "510": true, "511": true,
}

// IsRange reports whether code is a range key such as "4XX". OpenAPI
// requires upper case; lower case is accepted because real documents use it.
func IsRange(code string) bool {
	if len(code) != statusCodeLength || code[0] < '1' || code[0] > '5' {
		return false
	}
	return strings.EqualFold(code[1:], "XX")
}

// IsNumeric reports whether code is a three-digit status code in 100-599.
func IsNumeric(code string) bool {
	if len(code) != statusCodeLength {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	n, _ := strconv.Atoi(code)
	return n >= minStatusCode && n <= maxStatusCode
}

// ValidateStatusCode checks if a responses key is valid. Valid keys are:
//   - "default" for default response
//   - Extension fields starting with "x-"
//   - Range patterns: 1XX, 2XX, 3XX, 4XX, 5XX
//   - Numeric codes: 100-599
func ValidateStatusCode(code string) bool {
	return code == "default" || strings.HasPrefix(code, "x-") || IsRange(code) || IsNumeric(code)
}

// IsStandardStatusCode checks if a status code is registered in RFC 9110.
func IsStandardStatusCode(code string) bool {
	return standardStatusCodes[code]
}

// IsSuccess reports whether code is a 2xx code or the 2XX range.
func IsSuccess(code string) bool {
	return len(code) == statusCodeLength && code[0] == '2' && (IsNumeric(code) || IsRange(code))
}

// Covers reports whether key (a code or a range) covers code.
func Covers(key, code string) bool {
	if key == code {
		return true
	}
	return IsRange(key) && IsNumeric(code) && key[0] == code[0]
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and prevents invalid combinations (*/subtype).
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}

	if prefix, ok := strings.CutSuffix(mediaType, "/*"); ok {
		return prefix != "" && prefix != "*" && !strings.Contains(prefix, "/")
	}
	if strings.HasPrefix(mediaType, "*/") {
		return false
	}

	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil && strings.Contains(mediaType, "/")
}

// MatchesMediaType reports whether mediaType is matched by pattern, which
// may be "*/*" or "type/*". Parameters on mediaType are ignored.
func MatchesMediaType(pattern, mediaType string) bool {
	base, _, _ := strings.Cut(mediaType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	pattern = strings.ToLower(pattern)
	switch {
	case pattern == "*/*":
		return true
	case strings.HasSuffix(pattern, "/*"):
		return strings.HasPrefix(base, strings.TrimSuffix(pattern, "*"))
	default:
		return base == pattern
	}
}
