package log

import (
	"net/http"
	"time"
)

// Middleware returns an HTTP middleware that logs every request with method,
// path, status, size and latency. It expects the request ID middleware to
// have already populated the context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(lw, r)

			l := WithComponentFromContext(r.Context(), "http")
			evt := l.Info()
			if lw.status >= http.StatusInternalServerError {
				evt = l.Error()
			}
			evt.
				Str("method", r.Method).
				Str(FieldPath, r.URL.Path).
				Int("status", lw.status).
				Int("bytes", lw.bytes).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("request completed")
		})
	}
}

// loggingWriter wraps http.ResponseWriter to capture status and size.
type loggingWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (lw *loggingWriter) WriteHeader(status int) {
	if !lw.written {
		lw.status = status
		lw.written = true
	}
	lw.ResponseWriter.WriteHeader(status)
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.written {
		lw.WriteHeader(http.StatusOK)
	}
	n, err := lw.ResponseWriter.Write(b)
	lw.bytes += n
	return n, err
}
