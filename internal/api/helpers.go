package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/madfam-io/ec0249-engine/internal/export"
	"github.com/madfam-io/ec0249-engine/internal/store"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// storeError maps domain errors to HTTP status codes: lookups are 404,
// unsupported formats and bad data are 400, everything else is 500.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDocumentNotFound), errors.Is(err, store.ErrTemplateNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, export.ErrFormatUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
