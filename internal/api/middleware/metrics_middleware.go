package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware 以 chi route pattern 為標籤, 避免 path 參數造成標籤爆量
func MetricsMiddleware(m *metrics.ServerMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := NewStatusRecoder(w)
			next.ServeHTTP(recoder, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(recoder.Status())).Inc()
			m.LatencyMS.WithLabelValues(route, r.Method).Observe(float64(time.Since(start).Microseconds()) / 1000)
		})
	}
}
