package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bookingflow/pkg/decorapi"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// CodedError is implemented by the validation errors of the domain packages.
type CodedError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// WriteClientError maps an error from a backend read or mutation onto the
// envelope. Backend rejections keep their status and message verbatim so the
// UI can show them as-is; fallback is "failed to load" or "failed to submit".
func WriteClientError(w http.ResponseWriter, err error, fallback string) {
	var coded CodedError
	if errors.As(err, &coded) {
		status := http.StatusBadRequest
		if s, ok := coded.(interface{ HTTPStatus() int }); ok {
			status = s.HTTPStatus()
		}
		WriteError(w, status, coded.ErrorCode(), coded.ErrorMessage())
		return
	}
	var apiErr *decorapi.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		WriteError(w, status, "BACKEND_REJECTED", apiErr.Message)
		return
	}
	log.Printf("[api] %s: %v", fallback, err)
	if errors.Is(err, decorapi.ErrTransport) {
		WriteError(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", fallback)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", fallback)
}
