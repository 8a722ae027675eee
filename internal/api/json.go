package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/frankmd/internal/apperr"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps an error from the service layer to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidPath), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing text for err. Details of unexpected
// failures stay in the log.
func messageFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrFolderNotEmpty):
		return "folder is not empty"
	case errors.Is(err, apperr.ErrNotFound):
		return "not found"
	case errors.Is(err, apperr.ErrInvalidPath):
		return "invalid path"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, apperr.ErrConflict):
		return "checksum mismatch"
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	return "internal error"
}

// writeError answers with the status and message for err, logging failures
// that no sentinel explains.
func writeError(w http.ResponseWriter, op, path string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(messageFor(err)))
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
