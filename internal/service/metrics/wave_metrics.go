package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	WaveSearchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wavescope",
			Subsystem: "waves",
			Name:      "latency_seconds",
			Help:      "Latency of wave analysis operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	WaveCandidatesFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavescope",
			Subsystem: "waves",
			Name:      "candidates_found_total",
			Help:      "Pattern candidates found per operation",
		},
		[]string{"operation", "pattern_type"},
	)

	WaveCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavescope",
			Subsystem: "waves",
			Name:      "cache_hits_total",
			Help:      "Result cache hits by operation",
		},
		[]string{"operation"},
	)

	WaveErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavescope",
			Subsystem: "waves",
			Name:      "errors_total",
			Help:      "Errors by wave analysis operation",
		},
		[]string{"operation"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(WaveSearchLatency, WaveCandidatesFound, WaveCacheHits, WaveErrors)
	})
}
