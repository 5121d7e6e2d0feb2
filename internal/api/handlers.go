package api

import (
	"errors"
	"fmt"
	"net/http"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/constants"
	reqctx "skyatlas/airports/internal/context"
	"skyatlas/airports/internal/logging"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// NotFound renders unknown paths in the standard error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	common.RespondError(w, http.StatusNotFound, fmt.Sprintf(constants.MsgRouteNotFound, r.Method, r.URL.Path))
}

// MethodNotAllowed renders a known path hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	common.RespondError(w, http.StatusMethodNotAllowed, fmt.Sprintf(constants.MsgMethodNotAllowed, r.Method, r.URL.Path))
}

// respondFailure maps service errors onto status codes. Anything that is not
// a client error is logged and reported as 500.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		common.RespondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	logging.Error("Request failed",
		"request_id", reqctx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
	common.RespondError(w, http.StatusInternalServerError, constants.MsgInternalError)
}
