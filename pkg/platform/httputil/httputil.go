// Package httputil holds the shared HTTP response helpers: one JSON writer
// and one error writer so every handler speaks the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "aims/pkg/domain-errors"
)

// errorResponse is the wire shape of every error.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error onto an HTTP response. Internal errors hide
// their message; everything else carries it as error_description.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	status := dErrors.ToHTTPStatus(de.Code)
	if status >= http.StatusInternalServerError {
		WriteJSON(w, status, errorResponse{Error: "internal_error"})
		return
	}
	WriteJSON(w, status, errorResponse{Error: string(de.Code), Description: de.Message})
}
