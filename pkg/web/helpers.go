// Package web holds the HTTP plumbing shared by the services: JSON
// responses, path and query parsing, middleware and context keys.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RespondJSON writes payload as JSON with status. A nil payload writes only
// the status. Encoding happens before the header is sent, so an unencodable
// payload still turns into a clean 500.
func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RespondError writes {"error": message}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ParseID reads the {id} path parameter. On failure it writes a 400 JSON
// error and returns false.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if id, ok := ParsePositiveID(raw); ok {
		return id, true
	}
	RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", raw))
	return 0, false
}

// ParsePositiveID parses raw as a base-10 int64 greater than zero.
func ParsePositiveID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}
