// Package api writes the JSON envelope every endpoint answers with and reads
// JSON request bodies into it.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

const (
	CodeInvalidPayload  = "invalid_payload"
	CodePayloadTooLarge = "payload_too_large"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "status", status, "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	FailWithDetails(w, status, code, message, nil, requestID)
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailTooLarge answers a body that exceeded the server's limit. Employee
// payloads hit it when inline attachments were not shrunk before upload.
func FailTooLarge(w http.ResponseWriter, requestID string) {
	Fail(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large: shrink or remove attachments and retry", requestID)
}

// DecodeJSON reads one JSON value from the request body into dst. On failure
// it has already written the error response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		FailTooLarge(w, requestID)
	case errors.Is(err, io.EOF):
		Fail(w, http.StatusBadRequest, CodeInvalidPayload, "request body is empty", requestID)
	default:
		Fail(w, http.StatusBadRequest, CodeInvalidPayload, "invalid request payload", requestID)
	}
	return false
}
