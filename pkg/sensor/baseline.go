package sensor

import (
	"math"
	"time"

	"mqsense/pkg/clock"
	"mqsense/pkg/sampling"
)

// BaselineCalibrator establishes a channel's clean-air reference resistance
// by long-window averaging. It runs at boot and on operator request, with
// the sensors sitting in clean air.
type BaselineCalibrator struct {
	Sampler  *sampling.Sampler
	Model    Model
	Samples  int           // readings to accumulate
	Interval time.Duration // spacing between readings
	Clock    clock.Clock
}

// Calibrate measures the channel's clean-air resistance and divides by the
// manufacturer's clean-air factor to obtain Ro. Transient bad samples are
// skipped, not fatal; if nothing usable accumulates the fallback Ro is
// returned so a dead sensor cannot block startup.
func (b BaselineCalibrator) Calibrate(pin int, cleanAirFactor float64) float64 {
	var sum float64

	for i := 0; i < b.Samples; i++ {
		raw, err := b.Sampler.Sample(pin)
		if err == nil {
			r, rerr := b.Model.ResistanceOf(raw)
			if rerr == nil && !math.IsNaN(r) && !math.IsInf(r, 0) {
				sum += r
			}
		}
		if i < b.Samples-1 {
			b.Clock.Sleep(b.Interval)
		}
	}

	if sum <= 0 || cleanAirFactor <= 0 {
		return DefaultRo
	}

	ro := (sum / float64(b.Samples)) / cleanAirFactor
	if ro <= 0 || math.IsNaN(ro) || math.IsInf(ro, 0) {
		return DefaultRo
	}
	return ro
}
