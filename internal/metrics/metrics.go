package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipapi_lookups_total",
		Help: "Total number of lookup requests",
	})
	LookupDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ipapi_lookup_duration_ms",
		Help:    "Lookup duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	})
	RemoteFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipapi_remote_fail_total",
		Help: "Remote query failures by pipeline stage",
	}, []string{"stage"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipapi_cache_hits_total",
		Help: "Total result cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipapi_cache_misses_total",
		Help: "Total result cache misses",
	})
	LocalFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipapi_local_fallback_total",
		Help: "Total lookups served by the offline database",
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupDurationMs)
	prometheus.MustRegister(RemoteFailTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(LocalFallbackTotal)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：统一暴露注册指标到 /metrics 路径，由主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
