// Package shared centralizes the JSON envelopes used by every handler so
// error translation stays consistent across the transport.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into its HTTP status and envelope.
// Unclassified errors become opaque 500s; their details belong in logs, not
// responses.
func WriteError(w http.ResponseWriter, err error) {
	code := domerrors.CodeOf(err)
	status := domerrors.ToHTTPStatus(code)

	message := ""
	var de *domerrors.Error
	if errors.As(err, &de) && code != domerrors.CodeInternal {
		message = de.Message
	}

	WriteJSON(w, status, ErrorResponse{Error: string(code), Message: message})
}
