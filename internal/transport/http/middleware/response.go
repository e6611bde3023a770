package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes {"error": msg}. Responses from this service carry
// codes-related data and must not be cached by intermediaries.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
