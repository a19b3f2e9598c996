package main

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope is the body of every failed response. Raw carries the
// gateway's reply verbatim when there is one.
type errorEnvelope struct {
	Error   string          `json:"error"`
	Raw     json.RawMessage `json:"raw,omitempty"`
	Details string          `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &errorEnvelope{Error: message})
}
