package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/enrich"
	"github.com/MrSnakeDoc/curator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/organise"
	"github.com/MrSnakeDoc/curator/internal/scheduler"
)

// Organiser is the pipeline surface the handlers call.
type Organiser interface {
	StartBulkPass(ctx context.Context, scope domain.Scope, limit int) (*scheduler.Job, error)
	PreviewCandidateCount(ctx context.Context, scope domain.Scope, limit int) (int, error)
	Job(ctx context.Context, id string) (*domain.JobRecord, error)
	PrefillFromURL(ctx context.Context, rawURL string, scope domain.Scope) (organise.URLSuggestion, error)
	PrefillFromDocument(ctx context.Context, doc enrich.Document, scope domain.Scope) (organise.DocumentSuggestion, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the reasoning client's circuit state.
type BreakerReporter interface {
	BreakerState() string
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time   // for testing, defaults to time.Now
	AllowedHosts   []string           // Host headers allowed to access the server
	AllowedCIDRS   []string           // IPs allowed to access healthz/readyz/infra/metrics
	TrustProxy     bool               // true if running behind a trusted reverse proxy
	RateLimit      mw.RateLimitConfig // token bucket for the expensive organise endpoints
	MaxUploadBytes int64              // document prefill upload cap
	StoreMode      string             // "redis" | "memory"
	Store          Pinger             // document store, pinged by readyz and infra
	RedisClient    *redis.Client      // nil in memory mode
	Organiser      Organiser          // curation pipeline
	Enrichment     BreakerReporter    // reasoning service client
	Metrics        *metrics.Collector // Prometheus collector, may be nil
}
