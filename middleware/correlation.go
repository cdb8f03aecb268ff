package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// SetCorrelationID ensures every request carries a Correlation-Id header so
// log lines from one request can be tied together
func SetCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("Correlation-Id")
		if correlationID == "" {
			correlationID = uuid.NewString()
			r.Header.Set("Correlation-Id", correlationID)
		}
		w.Header().Set("Correlation-Id", correlationID)
		next.ServeHTTP(w, r)
	})
}
