package respcache

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"apielec/internal/metrics"
)

// Middleware is the read-through stage of the chain: replay a stored
// response when the key is present, otherwise record the handler's
// output and store it if it succeeded. Concurrent misses for one key
// may each run the query; the last write wins, which is acceptable for
// an append-only analytic table.
func Middleware(c *Cache, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := Key(r)
			if err != nil {
				logger.Error("cache key derivation failed", "path", r.URL.Path, "err", err)
				writeKeyError(w)
				return
			}

			if e, ok := c.Get(key); ok {
				metrics.CacheHits.Inc()
				w.Header().Set("Content-Type", e.ContentType)
				w.WriteHeader(e.Status)
				_, _ = w.Write(e.Body)
				return
			}
			metrics.CacheMisses.Inc()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				c.Put(key, Entry{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.buf.Bytes(),
				})
			}
		})
	}
}

// recorder tees the response so it can be cached after being sent.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	r.buf.Write(p)
	return r.ResponseWriter.Write(p)
}

func writeKeyError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ERROR",
		"statusCode": http.StatusBadRequest,
		"message":    "cache_key_error",
	})
}
