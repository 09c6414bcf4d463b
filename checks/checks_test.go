package checks

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/internal/testutil"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/resolver"
	"github.com/erraggy/oaslint/rules"
)

// run executes a single rule bound to function. The rule has no message, so
// finding messages are the check's detail text.
func run(t *testing.T, src, function string, params rules.Params, opts ...engine.Option) *engine.Result {
	t.Helper()
	eng, err := engine.New(Registry(), opts...)
	require.NoError(t, err)
	catalog := rules.Catalog{{
		ID:       "R",
		Severity: finding.High,
		Call:     rules.Call{Function: function, FunctionParams: params},
	}}
	res := eng.Run(context.Background(), src, catalog)
	require.NoError(t, res.Err)
	return res
}

func messages(fs []finding.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Message
	}
	return out
}

func texts(src string, fs []finding.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Range().Text(src)
	}
	return out
}

func TestRegistry(t *testing.T) {
	reg := Registry()
	assert.Equal(t, 13, reg.Len())
	for _, c := range reg.Checks() {
		assert.NotEmpty(t, c.Description, c.Name)
		assert.NotNil(t, c.Func, c.Name)
		assert.Equal(t, c.Name == NameNoBreakingChanges, c.Suspending, c.Name)
	}
	_, ok := reg.Lookup(NameHTTPSServers)
	assert.True(t, ok)
}

func TestSampleCatalogPassesPetstore(t *testing.T) {
	catalog, err := rules.Decode([]byte(testutil.CatalogYAML), rules.FormatYAML)
	require.NoError(t, err)
	eng, err := engine.New(Registry())
	require.NoError(t, err)

	res := eng.Run(context.Background(), testutil.PetstoreYAML, catalog)

	require.NoError(t, res.Err)
	assert.Empty(t, res.Findings)
	assert.Equal(t, catalog.IDs(), res.Passed())
	assert.Equal(t, "Petstore", res.Metadata.Title)
}

func TestHTTPSServersSingleInsecureServer(t *testing.T) {
	src := "openapi: 3.0.0\ninfo: {title: A, version: '1'}\nservers:\n  - url: http://a\npaths: {}\n"

	res := run(t, src, NameHTTPSServers, nil)

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "http://a", f.Range().Text(src))
	assert.Equal(t, strings.Index(src, "http://a"), f.From)
	assert.Equal(t, "R", f.Source)
	assert.Equal(t, finding.High, f.Severity)
}

func TestHTTPSServersAllLevels(t *testing.T) {
	src := `openapi: 3.0.0
info: {title: A, version: '1'}
servers:
  - url: https://ok.example.com
  - url: http://insecure.example.com
  - url: '{scheme}://templated.example.com'
  - url: /relative
paths:
  /a:
    servers:
      - url: http://path.example.com
    get:
      servers:
        - url: ftp://op.example.com
      responses: {}
`
	res := run(t, src, NameHTTPSServers, nil)
	assert.Equal(t, []string{
		"http://insecure.example.com",
		"http://path.example.com",
		"ftp://op.example.com",
	}, texts(src, res.Findings))
}

func TestHTTPSServersSwaggerSchemes(t *testing.T) {
	src := "swagger: '2.0'\ninfo: {title: A, version: '1'}\nschemes: [http, https]\npaths: {}\n"

	res := run(t, src, NameHTTPSServers, nil)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "http", res.Findings[0].Range().Text(src))
	assert.Equal(t, `scheme "http" is not https`, res.Findings[0].Message)
}

func TestCompanionMethodsListsMissing(t *testing.T) {
	src := `openapi: 3.0.0
info: {title: Users, version: '1'}
paths:
  /v1/users:
    post:
      responses: {}
  /v1/groups:
    get:
      responses: {}
`
	params := rules.Params{"method": "post", "companions": []any{"get", "put", "delete"}}

	res := run(t, src, NameCompanionMethods, params)

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "/v1/users exposes POST but not GET, PUT, DELETE", f.Message)
	assert.Equal(t, "/v1/users", f.Range().Text(src))
}

func TestCompanionMethodsMisconfigured(t *testing.T) {
	res := run(t, testutil.PetstoreYAML, NameCompanionMethods, rules.Params{"companions": "get"})

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, NameCompanionMethods, f.Source)
	assert.Equal(t, finding.Critical, f.Severity)
	assert.Contains(t, f.Message, "companionMethods.method")
	assert.Equal(t, locator.Whole(testutil.PetstoreYAML), f.Range())
}

const sharedIDYAML = `openapi: 3.0.3
info: {title: Shared, version: '1'}
paths:
  /users:
    post:
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/User'}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/UserAlias'}
components:
  schemas:
    UserAlias: {$ref: '#/components/schemas/User'}
    User:
      type: object
      properties:
        id: {type: string}
        Name: {type: string}
`

func TestPropertyReachedTwiceIsReportedOnce(t *testing.T) {
	doc, err := document.Parse(sharedIDYAML)
	require.NoError(t, err)
	r := resolver.New(doc, resolver.NewCache())
	op := doc.Root.Lookup("paths", "/users", "post")
	viaBody := r.Resolve(op.Lookup("requestBody", "content", "application/json", "schema"))
	viaResponse := r.Resolve(op.Lookup("responses", "200", "content", "application/json", "schema"))
	require.Same(t, viaBody, viaResponse)

	res := run(t, sharedIDYAML, NamePropertyCasing, rules.Params{"casing": "pascal"})

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, `property "id" is not PascalCase (suggest "Id")`, f.Message)
	assert.Equal(t, "id", f.Range().Text(sharedIDYAML))
	assert.Equal(t, strings.Index(sharedIDYAML, "id: {type"), f.From)
}

func TestPropertyCasingIgnoreAndNesting(t *testing.T) {
	src := `openapi: 3.1.0
info: {title: Nest, version: '1'}
paths: {}
components:
  schemas:
    Order:
      type: object
      properties:
        order_id: {type: string}
        _links: {type: object}
        lines:
          type: array
          items:
            type: object
            properties:
              unitPrice: {type: number}
              sku_code: {type: string}
      patternProperties:
        "^x_": {type: string}
`
	res := run(t, src, NamePropertyCasing, rules.Params{"casing": "camelCase", "ignore": []any{"_links"}})

	assert.Equal(t, []string{"order_id", "sku_code"}, texts(src, res.Findings))
	assert.Contains(t, res.Findings[1].Message, `suggest "skuCode"`)
}

func TestPropertyCasingInvalidStyle(t *testing.T) {
	res := run(t, testutil.PetstoreYAML, NamePropertyCasing, rules.Params{"casing": "screaming"})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, NamePropertyCasing, res.Findings[0].Source)
	assert.Equal(t, finding.Critical, res.Findings[0].Severity)
}

func TestParameterCasing(t *testing.T) {
	src := `openapi: 3.0.3
info: {title: Params, version: '1'}
paths:
  /users/{user_id}:
    parameters:
      - $ref: '#/components/parameters/UserId'
    get:
      parameters:
        - name: page_size
          in: query
        - name: X-Request-ID
          in: header
      responses: {}
    put:
      responses: {}
components:
  parameters:
    UserId: {name: user_id, in: path, required: true}
`
	res := run(t, src, NameParameterCasing, rules.Params{"casing": "camel", "in": "path, query"})

	assert.Equal(t, []string{
		`path parameter "user_id" is not camelCase (suggest "userId")`,
		`query parameter "page_size" is not camelCase (suggest "pageSize")`,
	}, messages(res.Findings))
	require.Len(t, res.Findings, 2)
	assert.Equal(t, strings.LastIndex(src, "user_id"), res.Findings[0].From, "reported where the parameter is defined")
	assert.Equal(t, "page_size", res.Findings[1].Range().Text(src))
}

func TestOperationFields(t *testing.T) {
	src := `openapi: 3.0.3
info: {title: Ops, version: '1'}
paths:
  /pets:
    get:
      operationId: listPets
      summary: List
      responses: {}
    post:
      operationId: createPet
      responses: {}
`
	res := run(t, src, NameOperationFields, rules.Params{"fields": []any{"operationId", "summary"}})

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "POST /pets is missing summary", res.Findings[0].Message)
	assert.Equal(t, "post", res.Findings[0].Range().Text(src))
}

func TestPathPattern(t *testing.T) {
	src := `openapi: 3.0.3
info: {title: Paths, version: '1'}
paths:
  /pets: {}
  /Pets: {}
  /pets/: {}
  /: {}
`
	params := rules.Params{"pattern": `^(/[a-z0-9{}-]*)+$`, "forbidTrailingSlash": true}
	res := run(t, src, NamePathPattern, params)

	assert.Equal(t, []string{"/Pets", "/pets/"}, texts(src, res.Findings))
	assert.Contains(t, res.Findings[0].Message, "does not match")
	assert.Equal(t, "path /pets/ has a trailing slash", res.Findings[1].Message)
}

func TestPathPatternBadRegexp(t *testing.T) {
	res := run(t, testutil.PetstoreYAML, NamePathPattern, rules.Params{"pattern": "("})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, NamePathPattern, res.Findings[0].Source)
	assert.Contains(t, res.Findings[0].Message, "pathPattern.pattern")
}

func TestVersionFormat(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		params rules.Params
		want   []string
	}{
		{
			name:   "number literal",
			src:    "openapi: 3.0\ninfo: {title: V, version: '1'}\npaths: {}\n",
			params: rules.Params{"allowed": []any{"3.1"}},
			want: []string{
				"openapi version 3.0 must be a string, not float",
				"openapi version 3.0 is not one of 3.1",
			},
		},
		{
			name:   "allowed by minor prefix",
			src:    "openapi: \"3.1.0\"\ninfo: {title: V, version: '1'}\npaths: {}\n",
			params: rules.Params{"allowed": []any{"3.0", "3.1"}},
		},
		{
			name:   "number allowed when strings not required",
			src:    "swagger: 2.0\ninfo: {title: V, version: '1'}\npaths: {}\n",
			params: rules.Params{"requireString": false, "allowed": "2.0"},
		},
		{
			name: "missing",
			src:  "info: {title: V, version: '1'}\npaths: {}\n",
			want: []string{"no openapi or swagger version declared"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.src, NameVersionFormat, tt.params)
			if len(tt.want) == 0 {
				assert.Empty(t, res.Findings)
				return
			}
			assert.Equal(t, tt.want, messages(res.Findings))
		})
	}
}

func TestVersionFormatRange(t *testing.T) {
	src := "openapi: 3.0\ninfo: {title: V, version: '1'}\npaths: {}\n"
	res := run(t, src, NameVersionFormat, nil)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "3.0", res.Findings[0].Range().Text(src))
}

func TestFieldPresent(t *testing.T) {
	src := "openapi: 3.0.3\ninfo:\n  title: F\n  version: '1'\npaths: {}\n"

	res := run(t, src, NameFieldPresent, rules.Params{"field": "info.contact.email"})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "info.contact.email is missing", res.Findings[0].Message)
	assert.Equal(t, "info", res.Findings[0].Range().Text(src))

	res = run(t, testutil.PetstoreYAML, NameFieldPresent, rules.Params{"field": "info.contact.email"})
	assert.Empty(t, res.Findings)

	res = run(t, src, NameFieldPresent, rules.Params{"field": "externalDocs"})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, locator.Range{}, res.Findings[0].Range())
}

func TestFieldPresentFormat(t *testing.T) {
	src := "openapi: 3.0.3\ninfo:\n  title: F\n  version: '1'\n  contact:\n    email: not-an-email\n    url: https://example.com\npaths: {}\n"

	res := run(t, src, NameFieldPresent, rules.Params{"field": "info.contact.email", "format": "email"})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, `info.contact.email "not-an-email" is not a valid email`, res.Findings[0].Message)
	assert.Equal(t, "not-an-email", res.Findings[0].Range().Text(src))

	res = run(t, src, NameFieldPresent, rules.Params{"field": "info.contact.url", "format": "url"})
	assert.Empty(t, res.Findings)

	res = run(t, src, NameFieldPresent, rules.Params{"field": "info.contact.url", "format": "uuid"})
	require.Len(t, res.Findings, 1)
	assert.Contains(t, res.Findings[0].Message, "fieldPresent.format")
}

func TestRefTargets(t *testing.T) {
	src := `openapi: 3.1.0
info: {title: R, version: '1'}
paths:
  /a:
    get:
      responses:
        "200":
          $ref: '#/components/responses/Missing'
components:
  schemas:
    Good: {type: string}
    UsesGood: {$ref: '#/components/schemas/Good'}
    LoopA: {$ref: '#/components/schemas/LoopB'}
    LoopB: {$ref: '#/components/schemas/LoopA'}
    Ext: {$ref: 'other.yaml#/X'}
`
	res := run(t, src, NameRefTargets, nil)

	assert.Equal(t, []string{
		"$ref #/components/responses/Missing does not resolve: target not found",
		"$ref #/components/schemas/LoopB is circular",
		"$ref #/components/schemas/LoopA is circular",
	}, messages(res.Findings))
	assert.Equal(t, []string{
		"#/components/responses/Missing",
		"#/components/schemas/LoopB",
		"#/components/schemas/LoopA",
	}, texts(src, res.Findings))
	assert.Greater(t, res.Findings[2].From, res.Findings[1].From)
}

func TestResponseCodes(t *testing.T) {
	src := `openapi: 3.0.3
info: {title: Codes, version: '1'}
paths:
  /a:
    get:
      responses:
        "200": {description: ok}
        4XX: {description: client error}
    post:
      responses:
        "201": {description: created}
    delete:
      responses:
        default: {description: error}
    put:
      summary: no responses
`
	res := run(t, src, NameResponseCodes, rules.Params{"required": []any{"400"}})

	assert.Equal(t, []string{
		"POST /a: missing 400",
		"DELETE /a: no 2XX response; missing 400",
		"PUT /a declares no responses",
	}, messages(res.Findings))
	assert.Equal(t, "put", res.Findings[2].Range().Text(src))
}

func TestResponseCodesInvalidAndUnregistered(t *testing.T) {
	src := `openapi: 3.0.3
info: {title: Codes, version: '1'}
paths:
  /a:
    get:
      responses:
        "200": {description: ok}
        "299": {description: odd}
        "6XX": {description: bad}
        x-note: {description: ignored}
`
	res := run(t, src, NameResponseCodes, nil)
	assert.Equal(t, []string{"GET /a: invalid status code 6XX"}, messages(res.Findings))

	res = run(t, src, NameResponseCodes, rules.Params{"standardOnly": true})
	assert.Equal(t, []string{"GET /a: invalid status code 6XX; unregistered status code 299"}, messages(res.Findings))
	assert.Equal(t, "responses", res.Findings[0].Range().Text(src))
}

const mediaYAML = `openapi: 3.0.3
info: {title: M, version: '1'}
paths:
  /a:
    post:
      requestBody:
        content:
          application/json: {schema: {type: object}}
          "*/json": {schema: {type: object}}
      responses:
        "200":
          $ref: '#/components/responses/Ok'
    put:
      requestBody:
        content:
          text/plain: {schema: {type: string}}
      responses:
        "200":
          $ref: '#/components/responses/Ok'
components:
  responses:
    Ok:
      description: ok
      content:
        application/xml: {schema: {type: string}}
`

func TestMediaTypes(t *testing.T) {
	res := run(t, mediaYAML, NameMediaTypes, nil)
	assert.Equal(t, []string{`media type "*/json" is malformed`}, messages(res.Findings))

	res = run(t, mediaYAML, NameMediaTypes, rules.Params{"allowed": []any{"application/*"}})
	assert.Equal(t, []string{
		`media type "*/json" is malformed`,
		"media type text/plain is not one of application/*",
	}, messages(res.Findings))
	assert.Equal(t, "text/plain", res.Findings[1].Range().Text(mediaYAML))

	res = run(t, testutil.PetstoreYAML, NameMediaTypes, rules.Params{"allowed": []any{"application/json"}})
	assert.Empty(t, res.Findings)
}

func TestMediaTypesSwaggerLists(t *testing.T) {
	src := `swagger: "2.0"
info: {title: S, version: '1'}
consumes:
  - application/json
produces:
  - json
paths:
  /a:
    get:
      produces:
        - application/xml
      responses:
        "200": {description: ok}
`
	res := run(t, src, NameMediaTypes, rules.Params{"allowed": []any{"application/json"}})
	assert.Equal(t, []string{
		`media type "json" is malformed`,
		"media type application/xml is not one of application/json",
	}, messages(res.Findings))
	assert.Equal(t, "- json", res.Findings[0].Range().Text(src))
}

func TestMediaTypesBadAllowed(t *testing.T) {
	res := run(t, mediaYAML, NameMediaTypes, rules.Params{"allowed": []any{"json"}})
	require.Len(t, res.Findings, 1)
	assert.Equal(t, NameMediaTypes, res.Findings[0].Source)
	assert.Contains(t, res.Findings[0].Message, "mediaTypes.allowed")
}

const securityYAML = `openapi: 3.0.3
info: {title: Sec, version: '1'}
security:
  - apiKey: []
paths:
  /a:
    get:
      responses: {}
    post:
      security:
        - oauth: [write]
      responses: {}
    delete:
      security: []
      responses: {}
components:
  securitySchemes:
    apiKey: {type: apiKey, name: k, in: header}
`

func TestSecurityDefined(t *testing.T) {
	res := run(t, securityYAML, NameSecurityDefined, nil)
	assert.Equal(t, []string{
		`security scheme "oauth" is not defined`,
		"DELETE /a disables security",
	}, messages(res.Findings))
	assert.Equal(t, "oauth", res.Findings[0].Range().Text(securityYAML))

	res = run(t, securityYAML, NameSecurityDefined, rules.Params{"allowAnonymous": true})
	assert.Len(t, res.Findings, 1)
}

func TestSecurityDefinedWithoutGlobal(t *testing.T) {
	src := "openapi: 3.0.3\ninfo: {title: S, version: '1'}\npaths:\n  /a:\n    get:\n      responses: {}\n"
	res := run(t, src, NameSecurityDefined, nil)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "GET /a has no security requirement", res.Findings[0].Message)
	assert.Equal(t, "get", res.Findings[0].Range().Text(src))
}
