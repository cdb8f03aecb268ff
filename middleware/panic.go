package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"raffler/response"

	log "github.com/sirupsen/logrus"
)

// PanicHandler turns handler panics into 500 responses instead of killing
// the connection
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				const size = 1 << 16
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				log.WithFields(log.Fields{
					"panic": fmt.Sprintf("%v", err),
					"path":  r.URL.Path,
					"stack": string(buf),
				}).Error("Recovered from panic in handler")

				response.Error(r.Context(), w, fmt.Errorf("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
