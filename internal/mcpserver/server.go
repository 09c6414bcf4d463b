// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oaslint capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oaslint"
	"github.com/erraggy/oaslint/baseline"
	"github.com/erraggy/oaslint/checks"
	"github.com/erraggy/oaslint/engine"
)

const serverInstructions = `oaslint MCP server: runs declarative rule catalogs against OpenAPI documents and reports findings with line/column locations.

Configuration: All defaults are configurable via OASLINT_MCP_* environment variables set in your MCP client config.

Key settings:
- OASLINT_MCP_CACHE_FILE_TTL (default: 15m): cache TTL for rule catalogs read from files
- OASLINT_MCP_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched catalogs
- OASLINT_MCP_CACHE_ENABLED (default: true): disable catalog caching entirely
- OASLINT_MCP_CHECK_TIMEOUT (default: 10s): bound on checks that wait for external data
- OASLINT_MCP_BASELINE_DIR: directory of baseline documents for breaking-change checks
- OASLINT_MCP_FINDING_LIMIT (default: 100): default result limit for lint

Caching: Decoded rule catalogs are cached per session. File entries use path+mtime as key (auto-invalidated on change). A background sweeper removes expired entries.`

var (
	baselinesOnce sync.Once
	baselines     *baseline.Cache
)

// baselineCache returns the shared baseline cache, or nil when no baseline
// directory is configured.
func baselineCache() *baseline.Cache {
	baselinesOnce.Do(func() {
		if cfg.BaselineDir != "" {
			baselines = baseline.NewCache(baseline.DirSource{Dir: cfg.BaselineDir},
				baseline.WithTTL(cfg.BaselineTTL), baseline.WithMaxEntries(cfg.CacheMaxSize))
		}
	})
	return baselines
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		catalogCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}
	if b := baselineCache(); b != nil {
		b.StartSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oaslint", Version: oaslint.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint",
		Description: "Run a rule catalog against an OpenAPI document. Returns findings with rule id, severity, message, line/column and byte range, plus the rules that passed and the rules skipped because their check function is unknown. Use min_severity to focus on the most severe findings and offset/limit to paginate.",
	}, handleLint)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rules",
		Description: "Load and validate a rule catalog (YAML, JSON or TOML). Returns each rule with its severity, check function and whether that function is registered.",
	}, handleRules)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "checks",
		Description: "List the registered check functions a rule catalog can reference in call.function, with their parameters.",
	}, handleChecks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "locate",
		Description: "Find the source range of a JSON pointer (e.g. /paths/~1pets/get) in an OpenAPI document. Returns the byte range, line/column and the text at that location.",
	}, handleLocate)
}

// newEngine builds an engine over the built-in checks with the server's
// configuration.
func newEngine(opts ...engine.Option) (*engine.Engine, error) {
	base := []engine.Option{
		engine.WithLogger(engine.NewSlogAdapter(slog.Default())),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithCheckTimeout(cfg.CheckTimeout),
	}
	if b := baselineCache(); b != nil {
		base = append(base, engine.WithBaselines(b))
	}
	return engine.New(checks.Registry(), append(base, opts...)...)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.FindingLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.FindingLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in a by-key tally.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}
