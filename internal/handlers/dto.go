package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON sends v as a JSON response. Handlers share this instead of
// repeating the header/encode dance.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
