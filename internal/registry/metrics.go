package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registeredSets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "iconshard_registry_icon_sets",
	Help: "Icon sets currently registered",
})

var imports = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iconshard_registry_imports_total",
	Help: "Icon set file imports by outcome",
}, []string{"status"})

var watchedFiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "iconshard_registry_watched_files",
	Help: "Icon set files tracked by the reloader, by status",
}, []string{"status"})
