package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics exported by the telemetry
// monitor and provides the HTTP handler serving them.
type Collector struct {
	gatherer prometheus.Gatherer

	Temperature prometheus.Gauge
	HeaterPower prometheus.Gauge
	Stable      prometheus.Gauge
	Samples     prometheus.Counter
	Reconnects  prometheus.Counter
}

// NewCollector registers the monitor metrics against reg, defaulting
// to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "librecal_temperature_celsius",
			Help: "Device temperature as reported by :TEMP?.",
		}),
		HeaterPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "librecal_heater_power_watts",
			Help: "Heater power draw as reported by :HEATER:POWER?.",
		}),
		Stable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "librecal_temperature_stable",
			Help: "1 when the device reports a settled temperature.",
		}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "librecal_telemetry_samples_total",
			Help: "Total telemetry samples taken.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "librecal_reconnects_total",
			Help: "Times the monitor had to re-establish the device connection.",
		}),
	}

	for _, m := range []prometheus.Collector{c.Temperature, c.HeaterPower, c.Stable, c.Samples, c.Reconnects} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe records one telemetry sample into the gauges.
func (c *Collector) Observe(s Sample) {
	c.Temperature.Set(s.Temperature)
	c.HeaterPower.Set(s.HeaterPower)
	if s.Stable {
		c.Stable.Set(1)
	} else {
		c.Stable.Set(0)
	}
	c.Samples.Inc()
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
