package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"mqsense/pkg/sensor"
)

func TestEvaluateAlerts_IndependentOfIndex(t *testing.T) {
	// A dangerous CO2 reading must alert even when the composite index
	// alone would sit in a low band.
	th := DefaultThresholds()
	est := zeroEstimates()
	est[sensor.GasCO2] = 600

	alerts := th.EvaluateAlerts(est, 40)
	assert.Contains(t, alerts, AlertCO2)
	assert.Len(t, alerts, 1)
}

func TestEvaluateAlerts_MultipleBreaches(t *testing.T) {
	th := DefaultThresholds()
	est := map[sensor.Gas]float64{
		sensor.GasCO2:     600,
		sensor.GasCO:      20,
		sensor.GasLPG:     1500,
		sensor.GasBenzene: 6,
		sensor.GasNOx:     12,
	}

	alerts := th.EvaluateAlerts(est, 90)
	assert.ElementsMatch(t, []AlertKind{
		AlertCO2, AlertCO, AlertLPG, AlertBenzene, AlertNOx, AlertHumidity,
	}, alerts)
}

func TestEvaluateAlerts_AtCeilingDoesNotTrigger(t *testing.T) {
	th := DefaultThresholds()
	est := map[sensor.Gas]float64{sensor.GasCO2: 500}

	alerts := th.EvaluateAlerts(est, 85)
	assert.Empty(t, alerts)
}

func TestEvaluateAlerts_SkipsInvalidEstimates(t *testing.T) {
	th := DefaultThresholds()
	est := map[sensor.Gas]float64{sensor.GasCO2: math.NaN()}

	alerts := th.EvaluateAlerts(est, math.NaN())
	assert.Empty(t, alerts)
}

func TestEvaluateAlerts_DisabledCeilings(t *testing.T) {
	th := Thresholds{}
	est := map[sensor.Gas]float64{sensor.GasCO2: 1e6}

	alerts := th.EvaluateAlerts(est, 100)
	assert.Empty(t, alerts)
}
