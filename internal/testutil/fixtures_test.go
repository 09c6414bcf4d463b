package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/rules"
)

func TestPetstoreParses(t *testing.T) {
	doc, err := document.Parse(PetstoreYAML)
	require.NoError(t, err)
	assert.Equal(t, "Petstore", doc.Title())
	version, node := doc.Version()
	assert.Equal(t, "3.0.3", version)
	assert.True(t, node.IsString())
	assert.Equal(t, []string{"/pets", "/pets/{petId}"}, doc.Paths().Keys())
}

func TestCatalogDecodes(t *testing.T) {
	catalog, err := rules.Decode([]byte(CatalogYAML), rules.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, catalog.Validate())
	assert.Equal(t, []string{"SEC-001", "NAM-001", "DOC-001", "SEC-002"}, catalog.IDs())
}

func TestNewSimpleDocuments(t *testing.T) {
	oas2 := NewSimpleOAS2Document()
	assert.Equal(t, "2.0", oas2["swagger"])
	assert.Equal(t, []any{"https"}, oas2["schemes"])

	oas3 := NewSimpleOAS3Document()
	assert.Equal(t, "3.0.3", oas3["openapi"])
	assert.Len(t, oas3["servers"], 1)
}

func TestWriteTempYAML(t *testing.T) {
	path := WriteTempYAML(t, NewSimpleOAS3Document())
	assert.Equal(t, ".yaml", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "3.0.3", got["openapi"])

	doc, err := document.ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Test API", doc.Title())
}

func TestWriteTempJSON(t *testing.T) {
	path := WriteTempJSON(t, NewSimpleOAS2Document())
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2.0", got["swagger"])

	doc, err := document.ParseBytes(data)
	require.NoError(t, err)
	assert.True(t, doc.IsOAS2())
}

func TestWriteTempFile(t *testing.T) {
	path := WriteTempFile(t, "rules.yaml", CatalogYAML)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, CatalogYAML, string(data))
}
