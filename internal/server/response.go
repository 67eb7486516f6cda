package server

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string            `json:"error"`
	Code  string            `json:"code,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, meta map[string]string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code, Meta: meta})
}
