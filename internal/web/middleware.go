// Package web - middleware
//
// EDUCATIONAL NOTES:
// ------------------
// Middleware in Go HTTP servers wraps handlers to add cross-cutting
// concerns. Context-based dependency injection is a common pattern:
//
// 1. Outer middleware injects dependencies into request context
// 2. Handlers retrieve dependencies from context when needed
// 3. Inner middleware can require dependencies and fail fast if missing

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/tabuladb/tabula/internal/sql/executor"
)

// contextKey is a custom type for context keys to avoid collisions with
// other packages using the same string key.
type contextKey string

// executorKey is the context key for storing the SQL executor.
const executorKey contextKey = "executor"

// WithExecutor returns middleware that injects the SQL executor into
// the request context. Handlers can retrieve it using GetExecutor.
func WithExecutor(exec *executor.Executor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), executorKey, exec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetExecutor retrieves the SQL executor from the request context.
// Returns nil if the executor was not set.
func GetExecutor(r *http.Request) *executor.Executor {
	exec, ok := r.Context().Value(executorKey).(*executor.Executor)
	if !ok {
		return nil
	}
	return exec
}

// RequireExecutor returns middleware that ensures an executor is present
// in the request context, preventing nil pointer panics in handlers that
// assume database access.
func RequireExecutor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetExecutor(r) == nil {
			writeError(w, http.StatusServiceUnavailable, "database not available")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger returns middleware that logs each request through logrus
// with method, path, status, and duration fields.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
				"reqid":    middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
