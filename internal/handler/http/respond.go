package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"product-catalog/internal/apperr"
)

// envelope is the response shape of every endpoint: a human-readable
// message plus, on success, the payload.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Message: message, Data: data})
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// not-found 404, everything else 500 with the fallback prefix.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, "Product not found", nil)
	default:
		writeJSON(w, http.StatusInternalServerError, fallback+": "+err.Error(), nil)
	}
}
