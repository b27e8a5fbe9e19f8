// Package metrics holds the Prometheus collectors shared by the converter,
// fetchers and HTTP server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Fetches counts upstream fetches by outcome (ok, error, empty, cached).
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geosite2abp_fetches_total",
			Help: "Total upstream rule list fetches by outcome",
		},
		[]string{"outcome"},
	)
	// Rules counts emitted ABP match rules by kind (domain, full, regexp).
	Rules = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geosite2abp_rules_total",
			Help: "Total ABP rules emitted by kind",
		},
		[]string{"kind"},
	)
	// Roots counts processed root items by result (ok, fault).
	Roots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geosite2abp_roots_total",
			Help: "Total root rule items processed",
		},
		[]string{"result"},
	)
	// FetchDuration observes upstream fetch latency.
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geosite2abp_fetch_duration_seconds",
			Help:    "Upstream rule list fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Fetches, Rules, Roots, FetchDuration)
	})
}
