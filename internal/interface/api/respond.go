package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stable error codes for the structured error body.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeUnknownSess   = "UNKNOWN_SESSION"
	codePlanNotFound  = "PLAN_NOT_FOUND"
	codeDataIntegrity = "DATA_INTEGRITY_ERROR"
	codeInternal      = "INTERNAL_ERROR"
)

type errorBody struct {
	ErrorCode string      `json:"errorCode"`
	Message   string      `json:"message,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Issues    interface{} `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, r *http.Request, status int, code, format string, args ...interface{}) {
	writeJSON(w, status, errorBody{
		ErrorCode: code,
		Message:   fmt.Sprintf(format, args...),
		RequestID: requestIDFrom(r.Context()),
	})
}
