package index

import (
	"math"

	"mqsense/pkg/sensor"
)

// AlertKind identifies one absolute-threshold breach.
type AlertKind string

const (
	AlertCO2      AlertKind = "co2_high"
	AlertCO       AlertKind = "co_high"
	AlertLPG      AlertKind = "lpg_high"
	AlertBenzene  AlertKind = "benzene_high"
	AlertNOx      AlertKind = "nox_high"
	AlertHumidity AlertKind = "humidity_high"
)

// Thresholds holds the absolute per-gas safety ceilings. Zero disables a
// ceiling.
type Thresholds struct {
	CO2      float64
	CO       float64
	LPG      float64
	Benzene  float64
	NOx      float64
	Humidity float64
}

// DefaultThresholds returns the stock safety ceilings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CO2:      500,
		CO:       15,
		LPG:      1000,
		Benzene:  5,
		NOx:      10,
		Humidity: 85,
	}
}

// EvaluateAlerts compares each raw gas estimate against its ceiling and
// reports every breach. This is deliberately decoupled from the composite
// index so a single dangerous gas cannot be masked by a low aggregate
// weight.
func (t Thresholds) EvaluateAlerts(estimates map[sensor.Gas]float64, humidity float64) []AlertKind {
	var alerts []AlertKind

	check := func(gas sensor.Gas, ceiling float64, kind AlertKind) {
		if ceiling <= 0 {
			return
		}
		est, ok := estimates[gas]
		if !ok || math.IsNaN(est) {
			return
		}
		if est > ceiling {
			alerts = append(alerts, kind)
		}
	}

	check(sensor.GasCO2, t.CO2, AlertCO2)
	check(sensor.GasCO, t.CO, AlertCO)
	check(sensor.GasLPG, t.LPG, AlertLPG)
	check(sensor.GasBenzene, t.Benzene, AlertBenzene)
	check(sensor.GasNOx, t.NOx, AlertNOx)

	if t.Humidity > 0 && !math.IsNaN(humidity) && humidity > t.Humidity {
		alerts = append(alerts, AlertHumidity)
	}

	return alerts
}
