package middleware

import (
	"encoding/json"
	"net/http"
)

// Problem is the JSON error body shared by the middleware and the handlers.
type Problem struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Problem{Error: code, Message: message})
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
