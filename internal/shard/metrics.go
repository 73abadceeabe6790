package shard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storedSets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_shard_stored_sets_total",
	Help: "Icon sets split and stored",
})

var storeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "iconshard_shard_store_duration_seconds",
	Help:    "Time to split an icon set and write its chunks",
	Buckets: prometheus.DefBuckets,
})
