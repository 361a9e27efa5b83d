package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/curator/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool    `json:"ok"`
	Mode        string  `json:"mode,omitempty"`
	State       string  `json:"state,omitempty"`
	Connections *uint32 `json:"connections,omitempty"`
	Impact      string  `json:"impact,omitempty"`
	Error       string  `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra summarises the store and reasoning service health.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		components := map[string]componentStatus{
			"store":      checkStore(r.Context(), d),
			"enrichment": checkEnrichment(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is critical without a store, degraded while the reasoning
// service is unavailable (fallbacks only), optimal otherwise.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	if e, ok := components["enrichment"]; ok && !e.OK {
		return "degraded"
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreMode,
			Impact: "organise-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreMode,
			Impact: "organise-disabled",
			Error:  "timeout",
		}
	}

	status := componentStatus{OK: true, Mode: d.StoreMode}
	if d.RedisClient != nil {
		conns := d.RedisClient.PoolStats().TotalConns
		status.Connections = &conns
	}
	return status
}

func checkEnrichment(d deps.Deps) componentStatus {
	if d.Enrichment == nil {
		return componentStatus{
			OK:     false,
			Impact: "fallback-only",
			Error:  "client not initialized",
		}
	}

	state := d.Enrichment.BreakerState()
	switch state {
	case "open", "half-open":
		return componentStatus{
			OK:     false,
			State:  state,
			Impact: "fallback-only",
		}
	default:
		return componentStatus{OK: true, State: state}
	}
}
