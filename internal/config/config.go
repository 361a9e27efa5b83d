package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "redis" | "memory"

	// Reasoning service
	EngineURL      string        // base URL of the reasoning service (ex: http://localhost:8081)
	EngineTimeout  time.Duration // per-call timeout for enrichment requests (default: 30s)
	BreakerEnabled bool          // wrap enrichment calls in a circuit breaker
	BreakerTimeout time.Duration // how long the breaker stays open (default: 60s)

	// Metadata fetch
	FetchTimeout      time.Duration // per-page fetch timeout (default: 5s)
	FetchMaxRedirects int           // redirect cap (default: 5)
	FetchUserAgent    string        // client identity sent with page fetches

	TaxonomyFile   string        // optional YAML overriding palette, categories, stopwords
	JobTTL         time.Duration // how long finished job records are kept (default: 24h)
	JobGCInterval  time.Duration // interval between job record sweeps (default: 1h)
	MaxUploadBytes int64         // document prefill upload cap (default: 10MiB)

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts    []string // optional, restrict access to specific Host headers
	AllowedCIDRS    []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy      bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins     []string // optional, allowed browser origins
	RateLimitBurst  int      // requests allowed in a burst per client (default: 10)
	RateLimitPerMin int      // sustained requests per minute per client (default: 30)
}

const defaultUserAgent = "CuratorBot/1.0 (+metadata fetcher)"

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CURATOR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CURATOR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CURATOR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CURATOR_PRETTY_LOG", true),

		Store: strings.ToLower(getenv("CURATOR_STORE", StoreRedis)),

		// Reasoning service
		EngineURL:      strings.TrimRight(getenv("CURATOR_ENGINE_URL", "http://localhost:8081"), "/"),
		EngineTimeout:  mustDuration("CURATOR_ENGINE_TIMEOUT", 30*time.Second),
		BreakerEnabled: mustBool("CURATOR_BREAKER_ENABLED", true),
		BreakerTimeout: mustDuration("CURATOR_BREAKER_TIMEOUT", 60*time.Second),

		// Metadata fetch
		FetchTimeout:      mustDuration("CURATOR_FETCH_TIMEOUT", 5*time.Second),
		FetchMaxRedirects: getenvInt("CURATOR_FETCH_MAX_REDIRECTS", 5),
		FetchUserAgent:    getenv("CURATOR_FETCH_USER_AGENT", defaultUserAgent),

		TaxonomyFile:   getenv("CURATOR_TAXONOMY_FILE", ""),
		JobTTL:         mustDuration("CURATOR_JOB_TTL", 24*time.Hour),
		JobGCInterval:  mustDuration("CURATOR_JOB_GC_INTERVAL", time.Hour),
		MaxUploadBytes: getenvInt64("CURATOR_MAX_UPLOAD_BYTES", 10<<20),

		// Redis settings
		RedisUser:           getenv("CURATOR_REDIS_USERNAME", ""),
		RedisPassword:       getenv("CURATOR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CURATOR_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:    splitAndTrim(getenv("CURATOR_ALLOWED_HOSTS", "")),
		AllowedCIDRS:    parseAllowedIPs(getenv("CURATOR_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("CURATOR_TRUST_PROXY", false),
		CORSOrigins:     splitAndTrim(getenv("CURATOR_CORS_ORIGINS", "")),
		RateLimitBurst:  getenvInt("CURATOR_RATE_LIMIT_BURST", 10),
		RateLimitPerMin: getenvInt("CURATOR_RATE_LIMIT_PER_MIN", 30),
	}

	switch cfg.Store {
	case StoreRedis:
		cfg.RedisAddr = requireEnv("CURATOR_REDIS_ADDR")
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: CURATOR_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
