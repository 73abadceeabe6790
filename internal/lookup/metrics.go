package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "iconshard_lookup_duration_seconds",
	Help:    "Time to resolve icon lookups, including chunk loads",
	Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
}, []string{"op"})

var notFound = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_lookup_not_found_total",
	Help: "Requested names that resolved to nothing",
})
