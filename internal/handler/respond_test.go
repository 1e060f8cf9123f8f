package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stdout"})
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad input"), 400},
		{"not found", apperr.NotFound("missing"), 404},
		{"unauthorized", apperr.Unauthorized("no token"), 401},
		{"forbidden", apperr.Forbidden("admins only"), 403},
		{"conflict", apperr.Conflict("duplicate"), 409},
		{"wrapped validation", fmt.Errorf("outer: %w", apperr.Validation("inner")), 400},
		{"unknown", errors.New("db exploded"), 500},
	}

	log := testLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got := writeError(log, rec, tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	log := testLogger()

	Configure("production")
	rec := httptest.NewRecorder()
	writeError(log, rec, errors.New("pq: connection refused"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])

	Configure("development")
	rec = httptest.NewRecorder()
	writeError(log, rec, errors.New("pq: connection refused"))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pq: connection refused", body["error"])
}
