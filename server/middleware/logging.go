package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/info":   true,
}

// RequestLogger logs every request once it completes, at a level chosen by
// status. Probe endpoints are skipped. Event streams log their lifetime and
// the number of flushed frames instead of a body size.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rec.streaming() {
				fields["flushes"] = rec.flushes
			} else {
				fields["bytes"] = rec.bytes
			}
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}

			switch {
			case rec.status >= 500:
				log.Error("Request completed", fields)
			case rec.status >= 400:
				log.Warn("Request completed", fields)
			default:
				log.Debug("Request completed", fields)
			}
		})
	}
}

// recorder captures what the handler wrote. It forwards Flush and exposes
// Unwrap so http.ResponseController reaches the connection's writer.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       int
	flushes     int
}

func (r *recorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *recorder) Flush() {
	f, ok := r.ResponseWriter.(http.Flusher)
	if !ok {
		return
	}
	r.flushes++
	f.Flush()
}

func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *recorder) streaming() bool {
	return strings.HasPrefix(r.Header().Get("Content-Type"), "text/event-stream")
}
