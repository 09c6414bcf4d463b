package checks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/oaserrors"
	"github.com/erraggy/oaslint/rules"
)

const baselineYAML = `openapi: 3.0.3
info: {title: Petstore, version: 1.0.0}
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
      responses:
        "200": {description: ok}
    post:
      responses:
        "201": {description: created}
  /pets/{petId}:
    get:
      responses:
        "200": {description: ok}
  /legacy:
    get:
      responses:
        "200": {description: ok}
`

const currentYAML = `openapi: 3.0.3
info: {title: Petstore, version: 2.0.0}
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
          required: true
        - name: sort
          in: query
          required: true
      responses:
        "200": {description: ok}
  /pets/{petId}:
    get:
      responses:
        "404": {description: nope}
`

// recordingSource serves one document and records requested ids.
type recordingSource struct {
	mu  sync.Mutex
	ids []string
	doc *document.Document
	err error
}

func (s *recordingSource) Baseline(_ context.Context, id string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return s.doc, s.err
}

func TestNoBreakingChanges(t *testing.T) {
	base, err := document.Parse(baselineYAML)
	require.NoError(t, err)
	src := &recordingSource{doc: base}

	res := run(t, currentYAML, NameNoBreakingChanges, nil, engine.WithBaselines(src))

	assert.Equal(t, []string{
		"operation POST /pets was removed",
		"path /legacy was removed",
		`GET /pets: query parameter "limit" became required`,
		`GET /pets: new required query parameter "sort"`,
		"GET /pets/{petId}: response 200 was removed",
	}, messages(res.Findings))
	assert.Equal(t, []string{"petstore"}, src.ids)

	require.Len(t, res.Findings, 5)
	assert.Equal(t, "/pets", res.Findings[0].Range().Text(currentYAML))
	assert.Equal(t, "paths", res.Findings[1].Range().Text(currentYAML))
	assert.Equal(t, "limit", res.Findings[2].Range().Text(currentYAML))
	assert.Equal(t, "sort", res.Findings[3].Range().Text(currentYAML))
}

func TestNoBreakingChangesExplicitBaseline(t *testing.T) {
	base, err := document.Parse(currentYAML)
	require.NoError(t, err)
	src := &recordingSource{doc: base}

	res := run(t, currentYAML, NameNoBreakingChanges, rules.Params{"baseline": "pets-v1"}, engine.WithBaselines(src))

	assert.Empty(t, res.Findings)
	assert.Equal(t, []string{"pets-v1"}, src.ids)
}

func TestNoBreakingChangesNotApplicable(t *testing.T) {
	tests := []struct {
		name string
		opts []engine.Option
	}{
		{name: "no baseline source"},
		{name: "baseline unavailable", opts: []engine.Option{engine.WithBaselines(&recordingSource{})}},
		{name: "fetch failure", opts: []engine.Option{engine.WithBaselines(&recordingSource{
			err: &oaserrors.FetchError{ID: "petstore", Message: "connection refused"},
		})}},
		{name: "fetch hangs", opts: []engine.Option{
			engine.WithCheckTimeout(20 * time.Millisecond),
			engine.WithBaselines(baseline.SourceFunc(func(ctx context.Context, _ string) (*document.Document, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, currentYAML, NameNoBreakingChanges, nil, tt.opts...)
			assert.Empty(t, res.Findings)
			assert.Equal(t, []string{"R"}, res.Passed())
		})
	}
}

func TestNoBreakingChangesThroughDirCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "petstore.yaml"), []byte(baselineYAML), 0o600))
	cache := baseline.NewCache(baseline.DirSource{Dir: dir}, baseline.WithTTL(time.Minute))

	for range 2 {
		res := run(t, currentYAML, NameNoBreakingChanges, nil, engine.WithBaselines(cache))
		assert.Len(t, res.Findings, 5)
	}
	assert.Equal(t, 1, cache.Len())
}
