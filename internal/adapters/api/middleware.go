package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// instrument records count and latency per route, labeled with the route
// pattern rather than the raw path to keep cardinality bounded.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		metrics.RecordHTTPRequest(route, strconv.Itoa(rec.code))
		metrics.ObserveHTTPRequestDuration(route, time.Since(started))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
