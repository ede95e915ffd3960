package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeError writes the same envelope as handler.WriteError, which imports
// this package.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
