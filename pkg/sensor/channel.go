// Package sensor models the MQ-series gas channels: their clean-air baseline
// resistance, smoothed resistance state and active concentration curve.
package sensor

import (
	"math"

	"mqsense/pkg/curve"
)

// Gas identifies one measured gas. The values double as wire keys in
// reported snapshots.
type Gas string

const (
	GasLPG     Gas = "lpg"
	GasCO      Gas = "co"
	GasSmoke   Gas = "smoke"
	GasCOMQ7   Gas = "co_mq7"
	GasCH4     Gas = "ch4"
	GasCOMQ9   Gas = "co_mq9"
	GasCO2     Gas = "co2"
	GasNH3     Gas = "nh3"
	GasNOx     Gas = "nox"
	GasAlcohol Gas = "alcohol"
	GasBenzene Gas = "benzene"
	GasH2      Gas = "h2"
	GasAir     Gas = "air"
)

// DefaultRo is the safe fallback baseline resistance (kOhm) used when
// clean-air calibration yields nothing usable. A non-functioning sensor must
// not prevent the system from coming up.
const DefaultRo = 10.0

// Channel is one gas channel: a tap on a physical sensor plus the mutable
// per-channel state the engine maintains. Gases sharing a sensor duplicate
// its pin and sample it independently. A channel is never destroyed, only
// reset.
type Channel struct {
	Gas            Gas
	Pin            int
	CleanAirFactor float64

	Ro    float64     // clean-air baseline resistance (kOhm)
	S     float64     // smoothed resistance; zero means uninitialized
	Curve curve.Curve // active concentration curve
}

// NewChannel creates a channel with its default curve and the fallback Ro.
func NewChannel(gas Gas, pin int, cleanAirFactor float64, c curve.Curve) *Channel {
	return &Channel{
		Gas:            gas,
		Pin:            pin,
		CleanAirFactor: cleanAirFactor,
		Ro:             DefaultRo,
		Curve:          c,
	}
}

// SetRo replaces the baseline resistance. Non-positive or non-finite values
// are rejected and the prior baseline retained.
func (c *Channel) SetRo(ro float64) bool {
	if ro <= 0 || math.IsNaN(ro) || math.IsInf(ro, 0) {
		return false
	}
	c.Ro = ro
	return true
}

// SetCurve replaces the active curve. Invalid curves are rejected and the
// prior curve retained.
func (c *Channel) SetCurve(cv curve.Curve) bool {
	if !cv.Valid() {
		return false
	}
	c.Curve = cv
	return true
}

// Smooth blends a new resistance observation into the channel's state:
// S' = alpha*x + (1-alpha)*S. The first valid observation seeds the state
// directly. Non-finite or non-positive values mean no update this cycle;
// they never corrupt S.
func (c *Channel) Smooth(r, alpha float64) float64 {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return c.S
	}

	if c.S == 0 {
		c.S = r
	} else {
		c.S = alpha*r + (1-alpha)*c.S
	}
	return c.S
}

// Estimate applies the active curve to the smoothed resistance ratio. An
// uninitialized channel, or any invalid intermediate value, yields NaN.
func (c *Channel) Estimate() float64 {
	if c.S <= 0 || c.Ro <= 0 {
		return math.NaN()
	}
	return c.Curve.Concentration(c.S / c.Ro)
}

// Reset clears the smoothed state and restores the fallback baseline. The
// active curve is kept; only a calibration session replaces it.
func (c *Channel) Reset() {
	c.S = 0
	c.Ro = DefaultRo
}
