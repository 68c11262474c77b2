// Package metrics provides Prometheus metrics for configuration loading.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recordcast"

// Collector holds the Prometheus metrics reported by the config package.
// A nil *Collector is valid and records nothing.
type Collector struct {
	// Load metrics
	ConfigLoads *prometheus.CounterVec

	// Reload metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ConfigLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_loads_total",
				Help:      "Total number of record loads by schema, source and result",
			},
			[]string{"schema", "source", "result"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveLoad counts one load of schema from source ("env", "file", ...).
func (c *Collector) ObserveLoad(schema, source string, err error) {
	if c == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	c.ConfigLoads.WithLabelValues(schema, source, result).Inc()
}

// ObserveReload records the outcome of a reload finished at ts.
func (c *Collector) ObserveReload(ts time.Time, err error) {
	if c == nil {
		return
	}

	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}

	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(ts.Unix()))
}
