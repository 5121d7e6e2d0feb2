package api

import (
	"context"
	"net/http"
	"time"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/models/dtos"
)

const healthProbeTimeout = 2 * time.Second

// HealthCheckHandler handles GET /healthCheck
// Verifies the catalog database and the response cache are reachable.
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		services := make(map[string]dtos.ServiceStatus)

		dbStatus := dtos.ServiceStatus{Status: "ok", Details: "Catalog database connected"}
		if err := h.deps.DB.PingContext(ctx); err != nil {
			dbStatus = dtos.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["database"] = dbStatus

		cache := h.deps.Services.Cache
		cacheStatus := dtos.ServiceStatus{Status: "ok", Details: cache.Name() + " cache reachable"}
		if err := cache.Ping(ctx); err != nil {
			cacheStatus = dtos.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["cache"] = cacheStatus

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		common.RespondJSON(w, code, dtos.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  h.deps.UpSince,
			Uptime:   time.Since(h.deps.UpSince).Round(time.Second).String(),
		})
	}
}
