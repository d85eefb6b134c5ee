package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// accessLogWriter captures the response status and, when a handler reports
// a business error, its code, so the request log line carries both.
type accessLogWriter struct {
	middleware.WrapResponseWriter
	errCode string
	errText string
}

func (w *accessLogWriter) noteError(code, message string) {
	w.errCode = code
	w.errText = message
}

type errorNoter interface {
	noteError(code, message string)
}

// logRequests emits one record per request. Expects to run after chi's
// RequestID middleware so the request id is available.
func logRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			lw := &accessLogWriter{WrapResponseWriter: middleware.NewWrapResponseWriter(w, r.ProtoMajor)}

			next.ServeHTTP(lw, r)

			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := routePattern(r)
			if route == "" {
				route = r.URL.Path
			}

			fields := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", lw.BytesWritten(),
				"elapsed_ms", time.Since(started).Milliseconds(),
				"remote", r.RemoteAddr,
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, "query", r.URL.RawQuery)
			}
			if lw.errCode != "" {
				fields = append(fields, "error_code", lw.errCode)
			}
			if lw.errText != "" {
				fields = append(fields, "error", lw.errText)
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

// recoverPanics turns handler panics into logged 500 responses. Must sit
// inside logRequests so the failed request is still logged.
func recoverPanics(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				logger.Error("panic in handler",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"route", routePattern(r),
					"path", r.URL.Path,
					"panic", fmt.Sprint(recovered),
					"stack", string(debug.Stack()),
				)
				// Respond only if the handler had not started writing.
				if ww, ok := w.(middleware.WrapResponseWriter); ok && ww.Status() != 0 {
					return
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
