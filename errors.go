package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is a rejected input. Message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps err onto the response. Anything not recognised is logged
// and answered with fallback so internal detail never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		msg := "Unauthorized"
		if errors.Is(err, ErrInvalidCredentials) {
			msg = "Invalid credentials"
		}
		writeMessage(w, http.StatusUnauthorized, msg)
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, ErrDuplicateEmail):
		writeMessage(w, http.StatusConflict, "User with this email already exists")
	default:
		slog.Error(fallback, "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
