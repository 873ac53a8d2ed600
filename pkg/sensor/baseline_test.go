package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mqsense/pkg/clock"
	"mqsense/pkg/sampling"
)

// constDevice always returns the same raw code.
type constDevice struct {
	code int
}

func (d *constDevice) Connect() error            { return nil }
func (d *constDevice) Close() error              { return nil }
func (d *constDevice) IsConnected() bool         { return true }
func (d *constDevice) ReadRaw(int) (int, error)  { return d.code, nil }
func (d *constDevice) ReadEnvironment() (float64, float64, error) {
	return 24, 40, nil
}

func newTestCalibrator(code, samples int) BaselineCalibrator {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	model := Model{FullScale: 1023, LoadResistance: 10.0}
	return BaselineCalibrator{
		Sampler:  sampling.New(&constDevice{code: code}, clk, 1023, 5, 5, time.Millisecond),
		Model:    model,
		Samples:  samples,
		Interval: 500 * time.Millisecond,
		Clock:    clk,
	}
}

func TestCalibrate(t *testing.T) {
	c := newTestCalibrator(511, 10)

	// Every sample resolves to the same resistance, so Ro is that
	// resistance over the clean-air factor.
	r := 10.0 * 512.0 / 511.0
	got := c.Calibrate(0, 9.83)
	assert.InDelta(t, r/9.83, got, 1e-9)
}

func TestCalibrate_AllInvalidFallsBack(t *testing.T) {
	// A dead sensor pinned to zero must not block startup.
	c := newTestCalibrator(0, 5)

	got := c.Calibrate(0, 9.83)
	assert.Equal(t, DefaultRo, got)
}

func TestCalibrate_SaturatedFallsBack(t *testing.T) {
	// Full-scale codes resolve to zero resistance; the sum stays
	// non-positive and the fallback applies.
	c := newTestCalibrator(1023, 5)

	got := c.Calibrate(0, 9.83)
	assert.Equal(t, DefaultRo, got)
}

func TestCalibrate_BadFactorFallsBack(t *testing.T) {
	c := newTestCalibrator(511, 5)

	assert.Equal(t, DefaultRo, c.Calibrate(0, 0))
	assert.Equal(t, DefaultRo, c.Calibrate(0, -1))
}
