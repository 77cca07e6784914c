// Package handlers groups the HTTP handlers used by the demo server.
package handlers

import (
	"encoding/json"
	"net/http"
)

// TestHandler answers with a simple message so the limiter can be poked.
func TestHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Request successful"})
}
