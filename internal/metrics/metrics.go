// Package metrics holds the Prometheus instruments for the configuration
// pipeline.  All collectors register with the global registry; the config
// reporter imports this package, which is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigMigrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_migrations_total",
			Help: "Cumulative number of configuration value migrations applied.",
		})

	ConfigRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_repairs_total",
			Help: "Cumulative number of configuration value repairs applied.",
		})

	ConfigUnknownRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_unknown_removed_total",
			Help: "Cumulative number of unknown properties pruned from the configuration.",
		})

	ConfigSaveErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_save_errors_total",
			Help: "Cumulative number of failed configuration write-backs.",
		})
)

func init() {
	prometheus.MustRegister(
		ConfigMigrationsTotal,
		ConfigRepairsTotal,
		ConfigUnknownRemovedTotal,
		ConfigSaveErrorsTotal,
	)
}
