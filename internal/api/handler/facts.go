package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/storepulse/storepulse/internal/api/respond"
	"github.com/storepulse/storepulse/internal/cache"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// RecentAlerts lists the newest alerts.
// @Summary Recent alerts
// @Tags facts
// @Produce json
// @Param limit query int false "Max rows (default 50, cap 500)"
// @Success 200 {object} map[string]interface{}
// @Router /alerts [get]
func (h *Handler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	h.serveRecent(w, r, "alerts", func(ctx context.Context, limit int) (any, error) {
		return h.readings.RecentAlerts(ctx, limit)
	})
}

// RecentAnomalies lists the newest anomaly observations.
// @Summary Recent anomaly observations
// @Tags facts
// @Produce json
// @Param limit query int false "Max rows (default 50, cap 500)"
// @Success 200 {object} map[string]interface{}
// @Router /anomaly/recent [get]
func (h *Handler) RecentAnomalies(w http.ResponseWriter, r *http.Request) {
	h.serveRecent(w, r, "anomalies", func(ctx context.Context, limit int) (any, error) {
		return h.readings.RecentAnomalies(ctx, limit)
	})
}

// RecentAssessments lists the newest risk assessments.
// @Summary Recent risk assessments
// @Tags facts
// @Produce json
// @Param limit query int false "Max rows (default 50, cap 500)"
// @Success 200 {object} map[string]interface{}
// @Router /risk/recent [get]
func (h *Handler) RecentAssessments(w http.ResponseWriter, r *http.Request) {
	h.serveRecent(w, r, "assessments", func(ctx context.Context, limit int) (any, error) {
		return h.readings.RecentAssessments(ctx, limit)
	})
}

// RecentAssignments lists the newest cluster assignments.
// @Summary Recent cluster assignments
// @Tags facts
// @Produce json
// @Param limit query int false "Max rows (default 50, cap 500)"
// @Success 200 {object} map[string]interface{}
// @Router /cluster/recent [get]
func (h *Handler) RecentAssignments(w http.ResponseWriter, r *http.Request) {
	h.serveRecent(w, r, "assignments", func(ctx context.Context, limit int) (any, error) {
		return h.readings.RecentAssignments(ctx, limit)
	})
}

// serveRecent handles the shared limit/cache/ETag plumbing for the
// recent-fact endpoints.
func (h *Handler) serveRecent(w http.ResponseWriter, r *http.Request, name string, query func(ctx context.Context, limit int) (any, error)) {
	limit := parseLimit(r)
	key := fmt.Sprintf("recent:%s:%d", name, limit)

	if data, etag, ok := h.cache.Get(key); ok {
		if r.Header.Get("If-None-Match") == etag {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLRecentFacts, true)
		return
	}

	items, err := query(r.Context(), limit)
	if err != nil {
		h.logger.Error("Recent-fact query failed", "kind", name, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to query "+name)
		return
	}

	data, err := json.Marshal(map[string]any{"count": countOf(items), "items": items})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED", "Failed to encode response")
		return
	}

	etag := h.cache.Set(key, data, cache.TTLRecentFacts)
	if r.Header.Get("If-None-Match") == etag {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLRecentFacts, false)
}

func parseLimit(r *http.Request) int {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func countOf(items any) int {
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}
