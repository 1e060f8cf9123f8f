// Package handler holds the HTTP layer: request parsing, status mapping and
// JSON responses. Business rules live in the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"slicecraft/internal/apperr"
	"slicecraft/pkg/logger"
)

// development controls whether internal error detail reaches clients.
var development bool

// Configure sets the environment the handlers run in. Call once at startup.
func Configure(environment string) {
	development = environment == "development"
}

func newRequestContext(r *http.Request) *logger.RequestContext {
	return &logger.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		StartTime:  time.Now(),
	}
}

// writeJSONResponse writes a JSON response with the given status code and data.
func writeJSONResponse(log *logger.Logger, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// writeErrorResponse writes an error response with the given status code and message.
func writeErrorResponse(log *logger.Logger, w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Error("Failed to encode error response", "error", err)
	}
}

// writeError maps a service error onto an HTTP status, writes the response and
// returns the status for request logging. Internal errors keep their detail
// out of the response unless running in development.
func writeError(log *logger.Logger, w http.ResponseWriter, err error) int {
	statusCode := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, apperr.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		statusCode = http.StatusForbidden
	case errors.Is(err, apperr.ErrConflict):
		statusCode = http.StatusConflict
	default:
		log.Error("Internal error", "error", err)
		if !development {
			message = "internal server error"
		}
	}

	writeErrorResponse(log, w, statusCode, message)
	return statusCode
}

// parseRequestBody parses a JSON request body into the target struct.
func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
