package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every API error. Clients read message first,
// then error.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes an ErrorBody with the given status.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ErrorBody{Error: errorCode, Message: message})
}

// WriteJSON encodes data before touching the response, so an encoding failure
// leaves the status unwritten and the caller can still report it.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(append(body, '\n'))
	return err
}
