package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// customSourceHandler adds a trimmed source attribute to every record; the
// stock AddSource option would point at this wrapper instead of the call site.
type customSourceHandler struct {
	inner slog.Handler
	skip  int
}

func newCustomSourceHandler(inner slog.Handler, skip int) slog.Handler {
	return &customSourceHandler{inner: inner, skip: skip}
}

func (h *customSourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *customSourceHandler) Handle(ctx context.Context, record slog.Record) error {
	if file, line, ok := callerOutsideLogger(h.skip); ok {
		record.AddAttrs(slog.String("source", fmt.Sprintf("%s:%d", file, line)))
	}
	return h.inner.Handle(ctx, record)
}

func (h *customSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &customSourceHandler{inner: h.inner.WithAttrs(attrs), skip: h.skip}
}

func (h *customSourceHandler) WithGroup(name string) slog.Handler {
	return &customSourceHandler{inner: h.inner.WithGroup(name), skip: h.skip}
}

// callerOutsideLogger walks the stack past slog and this package to find the
// first application frame.
func callerOutsideLogger(skip int) (string, int, bool) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3+skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File == "" {
			break
		}
		if !strings.Contains(frame.File, "log/slog") && !strings.Contains(frame.File, "pkg/logger") {
			return filepath.Base(frame.File), frame.Line, true
		}
		if !more {
			break
		}
	}
	return "", 0, false
}

// generateRequestID returns a random 16-hex-char request identifier.
func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
