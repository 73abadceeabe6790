package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iconshard_storage_reads_total",
	Help: "Cache file reads by outcome",
}, []string{"status"})

var writes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iconshard_storage_writes_total",
	Help: "Cache file writes by outcome",
}, []string{"status"})

var hits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_storage_hits_total",
	Help: "Gets served from memory",
})

var coalescedGets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_storage_coalesced_gets_total",
	Help: "Gets that joined a load already in flight",
})

var evictions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_storage_evictions_total",
	Help: "Items dropped from memory",
})

var watchedItems = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "iconshard_storage_watched_items",
	Help: "Resident items eligible for eviction",
})

var dirsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iconshard_storage_dirs_created_total",
	Help: "Cache directories created",
})
