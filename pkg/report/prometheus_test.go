package report

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"mqsense/pkg/index"
	"mqsense/pkg/sensor"
	"mqsense/pkg/station"
)

func TestPrometheus_Report(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Report(station.Snapshot{
		Estimates: map[sensor.Gas]float64{
			sensor.GasCO2: 412.5,
			sensor.GasNOx: math.NaN(),
		},
		Index:       210.3,
		Severity:    "Severe",
		Alerts:      []index.AlertKind{index.AlertCO2},
		Temperature: 24.5,
		Humidity:    math.NaN(),
	})

	assert.Equal(t, 412.5, testutil.ToFloat64(p.gas.WithLabelValues("co2")))
	assert.Equal(t, 210.3, testutil.ToFloat64(p.indexGauge))
	assert.Equal(t, 24.5, testutil.ToFloat64(p.temperature))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.alert.WithLabelValues("co2_high")))

	// The NaN estimate never reached the gauge; only co2 has a series.
	assert.Equal(t, 1, testutil.CollectAndCount(p.gas, "air_gas_estimate"))
}

func TestPrometheus_AlertGaugeClears(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Report(station.Snapshot{
		Estimates: map[sensor.Gas]float64{},
		Alerts:    []index.AlertKind{index.AlertCO2, index.AlertHumidity},
	})
	assert.Equal(t, 2, testutil.CollectAndCount(p.alert, "air_alert_active"))

	// The next clean cycle drops the stale alert series entirely.
	p.Report(station.Snapshot{Estimates: map[sensor.Gas]float64{}})
	assert.Equal(t, 0, testutil.CollectAndCount(p.alert, "air_alert_active"))
}
