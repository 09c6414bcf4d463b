// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"
)

// PetstoreYAML is a small OAS 3.0 document that passes the sample catalog.
const PetstoreYAML = `openapi: "3.0.3"
info:
  title: Petstore
  version: 1.0.0
  contact:
    email: api@example.com
servers:
  - url: https://petstore.example.com/v1
security:
  - apiKey: []
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      parameters:
        - name: pageSize
          in: query
          schema: {type: integer}
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
    post:
      operationId: createPet
      summary: Create a pet
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Pet'}
      responses:
        "201":
          description: Created
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema: {type: string}
    get:
      operationId: showPet
      summary: Show a pet
      responses:
        "200":
          description: OK
    put:
      operationId: updatePet
      summary: Update a pet
      responses:
        "200":
          description: OK
    delete:
      operationId: deletePet
      summary: Delete a pet
      responses:
        "204":
          description: Deleted
components:
  securitySchemes:
    apiKey: {type: apiKey, in: header, name: X-API-Key}
  schemas:
    Pet:
      type: object
      properties:
        id: {type: string}
        name: {type: string}
        ownerName: {type: string}
`

// CatalogYAML is a sample rule catalog exercising several built-in checks.
const CatalogYAML = `rules:
  - id: SEC-001
    message: Servers must use HTTPS
    severity: critical
    call:
      function: httpsServers
  - id: NAM-001
    message: Properties must be camelCase
    severity: low
    call:
      function: propertyCasing
      functionParams:
        casing: camel
  - id: DOC-001
    message: Operations need an id and a summary
    severity: medium
    call:
      function: operationFields
      functionParams:
        fields: [operationId, summary]
  - id: SEC-002
    message: Operations must be secured
    severity: high
    call:
      function: securityDefined
`

// NewSimpleOAS2Document creates a minimal Swagger 2.0 document for testing.
// Contains only required fields: swagger, info, host, basePath, schemes, paths.
func NewSimpleOAS2Document() map[string]any {
	return map[string]any{
		"swagger":  "2.0",
		"info":     map[string]any{"title": "Test API", "version": "1.0.0"},
		"host":     "api.example.com",
		"basePath": "/v1",
		"schemes":  []any{"https"},
		"paths":    map[string]any{},
	}
}

// NewSimpleOAS3Document creates a minimal OAS 3.x document for testing.
// Contains only required fields: openapi, info, paths, servers.
func NewSimpleOAS3Document() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "Test API", "version": "1.0.0"},
		"servers": []any{
			map[string]any{"url": "https://api.example.com/v1", "description": "Production server"},
		},
		"paths": map[string]any{},
	}
}

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	return WriteTempFile(t, "test.yaml", string(data))
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	return WriteTempFile(t, "test.json", string(data))
}

// WriteTempFile writes content to name inside a per-test temporary directory.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return path
}
