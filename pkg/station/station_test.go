package station

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqsense/pkg/adc"
	"mqsense/pkg/clock"
	"mqsense/pkg/config"
	"mqsense/pkg/sensor"
)

// recorder captures reported snapshots.
type recorder struct {
	snaps []Snapshot
}

func (r *recorder) Report(s Snapshot) {
	r.snaps = append(r.snaps, s)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sampling.Interval = time.Millisecond
	cfg.Baseline.Samples = 2
	cfg.Baseline.Interval = time.Millisecond
	cfg.Calibration.SamplesPerPoint = 2
	cfg.Calibration.SampleInterval = time.Millisecond
	cfg.Mock.Noise = 0
	cfg.Mock.Codes = map[int]int{0: 511, 1: 511, 2: 511, 3: 511, 4: 511}
	return cfg
}

func newTestStation(t *testing.T) (*Station, *adc.Mock, *clock.Fake) {
	t.Helper()

	cfg := testConfig()
	dev := adc.NewMock(&cfg.Mock, cfg.ADC.FullScale)
	require.NoError(t, dev.Connect())

	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return New(cfg, dev, clk), dev, clk
}

func TestCycle(t *testing.T) {
	st, _, _ := newTestStation(t)
	rec := &recorder{}
	st.AddReporter(rec)

	st.CalibrateBaselines()
	snap := st.Cycle()

	assert.Len(t, snap.Estimates, 13)
	for gas, est := range snap.Estimates {
		assert.False(t, math.IsNaN(est), "gas %s should have data", gas)
		assert.Positive(t, est, "gas %s", gas)
	}

	assert.GreaterOrEqual(t, snap.Index, 0.0)
	assert.NotEmpty(t, snap.Severity)
	assert.Equal(t, 24.0, snap.Temperature)
	assert.Equal(t, 40.0, snap.Humidity)

	require.Len(t, rec.snaps, 1)
	assert.Equal(t, snap.Index, rec.snaps[0].Index)
}

func TestCycle_DegradedChannel(t *testing.T) {
	st, dev, _ := newTestStation(t)
	st.CalibrateBaselines()

	// Pin 0 (MQ-2) dies: its gases lose data, the rest of the cycle is
	// unaffected.
	dev.SetCode(0, 0)
	snap := st.Cycle()

	assert.True(t, math.IsNaN(snap.Estimates[sensor.GasLPG]))
	assert.True(t, math.IsNaN(snap.Estimates[sensor.GasCO]))
	assert.True(t, math.IsNaN(snap.Estimates[sensor.GasSmoke]))
	assert.False(t, math.IsNaN(snap.Estimates[sensor.GasCO2]))
	assert.False(t, math.IsNaN(snap.Index))
}

func TestCalibrateBaselines(t *testing.T) {
	st, dev, _ := newTestStation(t)

	// A dead tap falls back to the default Ro; live taps calibrate.
	dev.SetCode(3, 0)
	st.CalibrateBaselines()

	r := 10.0 * 512.0 / 511.0
	assert.InDelta(t, r/9.83, st.Channel(sensor.GasLPG).Ro, 1e-9)
	assert.Equal(t, sensor.DefaultRo, st.Channel(sensor.GasCO2).Ro)

	// Gases sharing a tap share the baseline.
	assert.Equal(t, st.Channel(sensor.GasLPG).Ro, st.Channel(sensor.GasCO).Ro)
}

func TestCalibration_UpdatesCurve(t *testing.T) {
	st, dev, _ := newTestStation(t)
	ch := st.Channel(sensor.GasCO2)
	require.True(t, ch.SetRo(10))

	c, err := st.StartCalibration(sensor.GasCO2)
	require.NoError(t, err)
	require.NoError(t, c.Begin(2))

	dev.SetCode(3, 300)
	require.NoError(t, c.CollectPoint(10))

	dev.SetCode(3, 600)
	require.NoError(t, c.CollectPoint(100))

	fitted, err := c.Finish()
	require.NoError(t, err)
	assert.Equal(t, fitted, ch.Curve)

	// The accepted curve passes through both reference points.
	ratio1 := (10.0 * 723.0 / 300.0) / 10.0
	ratio2 := (10.0 * 423.0 / 600.0) / 10.0
	assert.InDelta(t, 10, fitted.Concentration(ratio1), 1e-6)
	assert.InDelta(t, 100, fitted.Concentration(ratio2), 1e-6)

	// The loop resumes once the session is over.
	snap := st.Cycle()
	assert.NotEmpty(t, snap.Estimates)
}

func TestCalibration_RejectedKeepsCurve(t *testing.T) {
	st, _, _ := newTestStation(t)
	ch := st.Channel(sensor.GasCO2)
	prior := ch.Curve

	// Identical measured ratios across both points: degenerate fit.
	c, err := st.StartCalibration(sensor.GasCO2)
	require.NoError(t, err)
	require.NoError(t, c.Begin(2))
	require.NoError(t, c.CollectPoint(10))
	require.NoError(t, c.CollectPoint(100))

	_, err = c.Finish()
	assert.Error(t, err)
	assert.Equal(t, prior, ch.Curve, "a rejected fit must leave the prior curve untouched")

	st.Cycle()
}

func TestCalibration_InvalidMeasurementAborts(t *testing.T) {
	st, dev, _ := newTestStation(t)
	ch := st.Channel(sensor.GasCO2)
	prior := ch.Curve

	// The tap rails to zero: no valid resistance sample can be taken.
	dev.SetCode(3, 0)

	c, err := st.StartCalibration(sensor.GasCO2)
	require.NoError(t, err)
	require.NoError(t, c.Begin(2))

	err = c.CollectPoint(10)
	assert.Error(t, err)
	assert.Equal(t, prior, ch.Curve)

	// The session released the loop on abort.
	st.Cycle()
}

func TestRunCalibration_Scripted(t *testing.T) {
	st, dev, _ := newTestStation(t)
	ch := st.Channel(sensor.GasLPG)
	require.True(t, ch.SetRo(10))
	dev.SetCode(0, 300)

	// Both points measure the same ratio, so the scripted session is
	// rejected end to end and the default curve survives.
	prior := ch.Curve
	_, err := st.RunCalibration(sensor.GasLPG, []float64{10, 100})
	assert.Error(t, err)
	assert.Equal(t, prior, ch.Curve)
}

func TestRunCalibration_UnknownGas(t *testing.T) {
	st, _, _ := newTestStation(t)

	_, err := st.RunCalibration(sensor.Gas("radon"), []float64{10, 100})
	assert.Error(t, err)
	st.Cycle()
}

func TestRun_StopsOnCancel(t *testing.T) {
	st, _, _ := newTestStation(t)
	rec := &recorder{}
	st.AddReporter(rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st.Run(ctx, time.Second)
	assert.Empty(t, rec.snaps, "a canceled context runs no cycles")
}
