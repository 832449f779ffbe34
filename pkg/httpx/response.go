package httpx

import (
	"encoding/json"
	"net/http"
)

// Messages shared by middleware and handlers.
const (
	MsgInternalError      = "Internal server error"
	MsgRouteNotFound      = "Route not found"
	MsgNoToken            = "Authentication required"
	MsgInvalidToken       = "Invalid or expired token"
	MsgForbidden          = "Forbidden: Insufficient permissions"
	MsgTooManyRequests    = "Too many requests. Please try again later."
	MsgMethodNotAllowed   = "Method not allowed"
	MsgInvalidRequestBody = "Invalid JSON body"
)

type messageBody struct {
	Message string `json:"message"`
}

// WriteJSON writes v as JSON with the given status code. Responses are never
// cached since most of them carry tokens.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the {"message": msg} envelope every error uses.
func WriteMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, messageBody{Message: msg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
