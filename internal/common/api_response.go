package common

import (
	"net/http"

	"github.com/goccy/go-json"

	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/models/dtos"
)

// RespondJSON writes body as JSON with the given status.
func RespondJSON(w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, []byte(`{"statusCode":500,"message":"Internal server error","error":"Internal Server Error"}`))
		return
	}
	writeJSON(w, statusCode, data)
}

// RespondError writes the standard error envelope:
// {"statusCode":404,"message":"...","error":"Not Found"}.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, dtos.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Error:      http.StatusText(statusCode),
	})
}

func writeJSON(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Response write failed", "error", err.Error())
	}
}
