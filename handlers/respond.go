package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tasks-api/utilities"
)

// Fixed messages returned to clients.
const (
	MsgHealthy          = "Tasks API is running"
	MsgTitleRequired    = "title is required"
	MsgTaskNotFound     = "task not found"
	MsgTaskDeleted      = "task deleted successfully"
	MsgRouteNotFound    = "resource not found"
	MsgMethodNotAllowed = "method not allowed"
)

// MessageResponse is the body of non-task success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		utilities.LogError(err, "respondWithJSON: failed to encode response")
		code = http.StatusInternalServerError
		response = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

var errTrailingData = errors.New("unexpected data after JSON object")

// decodeJSONBody decodes the request body into dst. An empty body leaves dst
// untouched; anything after the first JSON value is rejected.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// NotFoundHandler answers requests that match no route.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, MsgRouteNotFound)
	})
}

// MethodNotAllowedHandler answers requests whose path exists under another method.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
}
