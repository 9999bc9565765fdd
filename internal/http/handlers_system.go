package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics exposes the middleware and cache counters as plain text, one
// "name value" pair per line.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	line := func(name string, v any) { fmt.Fprintf(&b, "%s %v\n", name, v) }

	tm := s.tracer.GetMetrics()
	line("ledger_http_requests_total", tm.TotalRequests)
	line("ledger_http_server_errors_total", tm.ServerErrors)
	line("ledger_http_avg_response_us", tm.AverageResponseTime)

	rm := s.limiter.GetMetrics()
	line("ledger_ratelimit_rejected_total", rm.TotalHits)
	line("ledger_ratelimit_clients", rm.ClientCount)

	sm := s.detector.GetMetrics()
	line("ledger_security_suspicious_total", sm.SuspiciousRequests)
	line("ledger_security_blocked_total", sm.BlockedRequests)
	line("ledger_security_invalid_ip_total", sm.InvalidIPAttempts)

	if s.deps.InsightCache != nil {
		cs := s.deps.InsightCache.Stats()
		line("ledger_insights_cache_hits_total", cs.Hits)
		line("ledger_insights_cache_misses_total", cs.Misses)
		line("ledger_insights_cache_evictions_total", cs.Evictions)
		line("ledger_insights_cache_size", cs.Size)
	}

	NewResponse().Text(b.String()).Write(w)
}

type categoryInfo struct {
	Name  core.Category `json:"name"`
	Color string        `json:"color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := make([]categoryInfo, 0, len(core.Categories))
	for _, c := range core.Categories {
		cats = append(cats, categoryInfo{Name: c, Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, struct {
		Categories  []categoryInfo    `json:"categories"`
		Recurrences []core.Recurrence `json:"recurrences"`
	}{cats, core.Recurrences})
}
