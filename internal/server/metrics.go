package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var responseCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iconshard_http_response_cache_total",
	Help: "Icon batch response cache lookups by result",
}, []string{"result"})
