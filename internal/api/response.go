package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// exportError is the body of a failed JSON export.
type exportError struct {
	Error string `json:"error"`
}

// failExport logs err and answers a 500 with a JSON body that names no
// internals.
func failExport(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "path", r.URL.Path, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	if err := json.NewEncoder(w).Encode(exportError{Error: "catalog unavailable"}); err != nil {
		slog.Error("failed to write error body", "error", err)
	}
}
