// Package baseline provides comparison documents to checks that diff the
// document under validation against a previously published version.
//
// A Source returns the baseline for a stable identifier, or (nil, nil) when
// none is available. Checks treat both an unavailable baseline and a
// *oaserrors.FetchError as "rule not applicable".
//
// Cache wraps any Source with a bounded, TTL-expiring store. It is built
// explicitly and handed to the engine; there is no package-level cache.
package baseline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/oaserrors"
)

// Source fetches comparison documents by identifier.
type Source interface {
	// Baseline returns the document for id, or (nil, nil) if none exists.
	Baseline(ctx context.Context, id string) (*document.Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, id string) (*document.Document, error)

// Baseline implements Source.
func (f SourceFunc) Baseline(ctx context.Context, id string) (*document.Document, error) {
	return f(ctx, id)
}

// Extensions are tried in order when looking up a baseline file.
var Extensions = []string{".yaml", ".yml", ".json"}

// DirSource reads baselines from <Dir>/<id>.{yaml,yml,json}.
type DirSource struct {
	Dir string
}

// Baseline implements Source.
func (s DirSource) Baseline(ctx context.Context, id string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidID(id) {
		return nil, &oaserrors.FetchError{ID: id, Message: "invalid baseline id"}
	}

	for _, ext := range Extensions {
		path := filepath.Join(s.Dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &oaserrors.FetchError{ID: id, Message: "cannot read baseline", Cause: err}
		}
		doc, err := document.ParseBytes(data)
		if err != nil {
			return nil, &oaserrors.FetchError{ID: id, Message: "invalid baseline document", Cause: err}
		}
		return doc, nil
	}
	return nil, nil
}

// ValidID reports whether id is usable as a file stem: non-empty, no path
// separators, and not a relative path element.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}

// Key derives the baseline identifier for a document: the explicit id when
// set, otherwise a slug of the document title.
func Key(doc *document.Document, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if doc == nil {
		return ""
	}
	return Slug(doc.Title())
}

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single '-'.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
