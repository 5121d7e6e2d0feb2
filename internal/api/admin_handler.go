package api

import (
	"errors"
	"net/http"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/constants"
	reqctx "skyatlas/airports/internal/context"
	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/models/dtos"
)

// ImportData handles POST /admin/import-data
// Reloads the catalog from upstream, then clears the response cache.
func (h *Handlers) ImportData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := reqctx.GetPrincipal(r.Context())
		logging.Info("Admin import requested",
			"request_id", reqctx.GetRequestID(r.Context()),
			"auth", p.Method,
			"subject", p.Subject,
		)

		n, err := h.deps.Services.Airports.ImportCatalog(r.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, common.ErrUpstreamFetch) {
				status = http.StatusBadGateway
			}
			common.RespondError(w, status, constants.MsgImportFailed)
			return
		}

		common.RespondJSON(w, http.StatusOK, dtos.MessageResponse{
			Message:  constants.MsgImportSucceeded,
			Imported: &n,
		})
	}
}

// ClearCache handles DELETE /admin/cache
func (h *Handlers) ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.deps.Services.Airports.FlushCache(r.Context())
		common.RespondJSON(w, http.StatusOK, dtos.MessageResponse{Message: constants.MsgCacheCleared})
	}
}
