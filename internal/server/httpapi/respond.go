package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/instashare/instashare/internal/common"
)

// errorEnvelope is the error payload shape the admin frontend's error
// engine expects. Data carries per-field validation messages on 422.
type errorEnvelope struct {
	Success      bool   `json:"success"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	ShowType     int    `json:"showType"`
	Data         any    `json:"data,omitempty"`
}

// listEnvelope wraps listing responses.
type listEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Total   int  `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a service error onto an HTTP status and the error
// envelope.
func writeError(w http.ResponseWriter, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeErrorStatus(w, http.StatusUnprocessableEntity, verr.Error(), verr.Fields)
		return
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeErrorStatus(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, common.ErrorNotDownloadable):
		writeErrorStatus(w, http.StatusNotFound, "Download not yet available for this file", nil)
	case errors.Is(err, common.ErrorArtifactMissing):
		writeErrorStatus(w, http.StatusInternalServerError, "File is missing or file server is not available", nil)
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeErrorStatus(w, http.StatusUnauthorized, "unauthorized", nil)
	default:
		writeErrorStatus(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string, fields map[string][]string) {
	env := errorEnvelope{
		ErrorCode:    strconv.Itoa(status),
		ErrorMessage: msg,
		ShowType:     9,
	}
	if fields != nil {
		env.Data = fields
	}
	writeJSON(w, status, env)
}
