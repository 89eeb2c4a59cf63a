package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apielec_http_requests_total",
		Help: "HTTP requests handled, by path and status code.",
	}, []string{"path", "status"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apielec_response_cache_hits_total",
		Help: "Responses served from the response cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apielec_response_cache_misses_total",
		Help: "Requests that fell through to the database.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apielec_query_duration_seconds",
		Help:    "Consumption-table query latency, by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
