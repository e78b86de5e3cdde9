// Package http exposes the platform's REST API: contract upload and
// retrieval, decision traces, template listing, and operational endpoints.
package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto the envelope.  AppError codes choose the
// status; anything else is an opaque 500.
func writeError(w http.ResponseWriter, log logging.Logger, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status := appErr.Code.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.Error("request failed", logging.Err(err))
		}
		writeJSON(w, status, errorBody{Error: errorDetail{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Detail:  appErr.Detail,
		}})
		return
	}
	log.Error("request failed", logging.Err(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
		Code:    string(errors.ErrCodeInternal),
		Message: "internal error",
	}})
}
