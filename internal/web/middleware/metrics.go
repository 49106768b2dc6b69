package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/intake/internal/metrics"
)

// Metrics records request counts and latency labelled by the chi route
// pattern, which keeps label cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		metrics.RecordRequest(r.Method, routePattern(r), rec.status, time.Since(start))
	})
}
