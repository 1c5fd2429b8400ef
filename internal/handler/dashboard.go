package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

// HealthCheck probes one dependency; a non-nil error marks it unhealthy
type HealthCheck func(ctx context.Context) error

// DashboardHandler serves the inventory overview
type DashboardHandler struct {
	base
	Service DashboardService
}

// GetDashboardHandler returns counts, due maintenance and open tickets
func (h *DashboardHandler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	summary, err := h.Service.Summary(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "build dashboard")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, summary)
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	base
	checks map[string]HealthCheck
}

// HealthHandler provides a health check endpoint. Any failing dependency
// turns the response into a 503.
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, HealthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "healthy", http.StatusOK
	dependencies := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.Logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			dependencies[name] = "unhealthy"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "healthy"
	}

	data := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"service":   "maintenance-tracker-api",
		"status":    status,
	}
	if len(dependencies) > 0 {
		data["dependencies"] = dependencies
	}

	if code != http.StatusOK {
		h.ErrorHandler.SendJSONResponse(w, code, data)
		return
	}
	h.ErrorHandler.SendSuccessResponse(w, code, "Service is healthy", data)
}
