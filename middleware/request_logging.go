package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RequestLogging logs one line per request with method, path, and latency
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":        r.Method,
			"path":          r.URL.Path,
			"correlationID": r.Header.Get("Correlation-Id"),
			"duration":      time.Since(start).String(),
		}).Info("Handled request")
	})
}
