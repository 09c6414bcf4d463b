package mcpserver

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix prefixes every server setting, e.g. OASLINT_MCP_CACHE_TTL.
const envPrefix = "OASLINT_MCP_"

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Catalog cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Engine settings.
	Concurrency  int
	CheckTimeout time.Duration
	BaselineDir  string
	BaselineTTL  time.Duration

	// Input and output limits.
	FindingLimit    int
	MaxLimit        int
	MaxInlineSize   int64
	AllowPrivateIPs bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASLINT_MCP_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	k := koanf.New(".")
	_ = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	e := envReader{k: k}

	return &serverConfig{
		CacheEnabled:       e.boolean("cache_enabled", true),
		CacheMaxSize:       e.integer("cache_max_size", 10),
		CacheFileTTL:       e.duration("cache_file_ttl", 15*time.Minute),
		CacheURLTTL:        e.duration("cache_url_ttl", 5*time.Minute),
		CacheContentTTL:    e.duration("cache_content_ttl", 15*time.Minute),
		CacheSweepInterval: e.duration("cache_sweep_interval", 60*time.Second),
		Concurrency:        e.integer("concurrency", 0),
		CheckTimeout:       e.duration("check_timeout", 10*time.Second),
		BaselineDir:        k.String("baseline_dir"),
		BaselineTTL:        e.duration("baseline_ttl", 15*time.Minute),
		FindingLimit:       e.integer("finding_limit", 100),
		MaxLimit:           e.integer("max_limit", 1000),
		MaxInlineSize:      int64(e.integer("max_inline_size", 10*1024*1024)),
		AllowPrivateIPs:    e.boolean("allow_private_ips", false),
	}
}

// envReader parses single koanf keys with per-key fallback.
type envReader struct {
	k *koanf.Koanf
}

func (e envReader) raw(key string) string {
	return strings.TrimSpace(e.k.String(key))
}

func (e envReader) warn(kind, key, value string, fallback any) {
	slog.Warn("invalid "+kind+" env var, using default", "key", envPrefix+strings.ToUpper(key), "value", value, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
}

func (e envReader) boolean(key string, fallback bool) bool {
	v := e.raw(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.warn("bool", key, v, fallback)
		return fallback
	}
	return b
}

func (e envReader) integer(key string, fallback int) int {
	v := e.raw(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.warn("int", key, v, fallback)
		return fallback
	}
	return n
}

func (e envReader) duration(key string, fallback time.Duration) time.Duration {
	v := e.raw(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.warn("duration", key, v, fallback)
		return fallback
	}
	return d
}
