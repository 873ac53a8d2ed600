package report

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"mqsense/pkg/station"
)

// Prometheus exposes the latest snapshot as gauges.
type Prometheus struct {
	gas         *prometheus.GaugeVec
	alert       *prometheus.GaugeVec
	indexGauge  prometheus.Gauge
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
}

// NewPrometheus creates the reporter and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		gas: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "air_gas_estimate",
			Help: "Estimated gas concentration per channel (ppm-equivalent)",
		}, []string{"gas"}),
		alert: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "air_alert_active",
			Help: "Absolute-threshold alert state (1 = breached)",
		}, []string{"kind"}),
		indexGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "air_quality_index",
			Help: "Composite air-quality index (SD-AQI)",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "air_temperature",
			Help: "Ambient temperature (degrees Celsius)",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "air_humidity",
			Help: "Relative humidity (percent)",
		}),
	}

	reg.MustRegister(p.gas, p.alert, p.indexGauge, p.temperature, p.humidity)
	return p
}

// Report updates the gauges from the snapshot.
func (p *Prometheus) Report(snap station.Snapshot) {
	for gas, est := range snap.Estimates {
		if math.IsNaN(est) || math.IsInf(est, 0) {
			continue
		}
		p.gas.WithLabelValues(string(gas)).Set(est)
	}

	p.alert.Reset()
	for _, kind := range snap.Alerts {
		p.alert.WithLabelValues(string(kind)).Set(1)
	}

	p.indexGauge.Set(snap.Index)
	if !math.IsNaN(snap.Temperature) {
		p.temperature.Set(snap.Temperature)
	}
	if !math.IsNaN(snap.Humidity) {
		p.humidity.Set(snap.Humidity)
	}
}
