// Package index combines per-gas concentration estimates into the composite
// air-quality index (SD-AQI) and evaluates the absolute per-gas safety
// ceilings.
package index

import (
	"math"

	"mqsense/pkg/sensor"
)

// Weights maps contributing gases to their composite index weight. CO2
// dominates: sustained CO2 buildup is the most diagnostic single signal for
// intake contamination.
type Weights map[sensor.Gas]float64

// DefaultWeights returns the deployed engine's weighting.
func DefaultWeights() Weights {
	return Weights{
		sensor.GasCO:    0.05,
		sensor.GasCOMQ7: 0.10,
		sensor.GasCOMQ9: 0.10,
		sensor.GasCH4:   0.10,
		sensor.GasH2:    0.05,
		sensor.GasCO2:   0.50,
		sensor.GasNOx:   0.10,
		sensor.GasAir:   0.05,
	}
}

// Band is one severity band: index values up to Max carry Label.
type Band struct {
	Max   float64
	Label string
}

// Classifier is an ordered, non-overlapping severity ladder. Values above
// every band's Max take the last band's label.
type Classifier []Band

// Classify maps an index value to its severity label. Classification is a
// pure function of the value, independent of the gas breakdown behind it.
func (c Classifier) Classify(v float64) string {
	if len(c) == 0 {
		return ""
	}
	for _, b := range c[:len(c)-1] {
		if v <= b.Max {
			return b.Label
		}
	}
	return c[len(c)-1].Label
}

// DefaultBands returns the default severity ladder.
func DefaultBands() Classifier {
	return Classifier{
		{Max: 50, Label: "Good"},
		{Max: 100, Label: "Moderate"},
		{Max: 150, Label: "Advisory"},
		{Max: 200, Label: "Unhealthy"},
		{Max: 300, Label: "Severe"},
		{Label: "Hazardous"},
	}
}

// Aggregator computes the composite index and its severity label.
type Aggregator struct {
	Weights Weights
	Bands   Classifier
}

// ComputeIndex combines the channel estimates into the raw weighted sum and
// classifies it. Estimates for gases without a weight contribute nothing, as
// do NaN estimates: a degraded channel must not poison the index.
//
// This is the deployed engine's formula: absolute estimates, no
// normalization. The documented normalized sub-score variant is
// NormalizeSubScore, which is NOT numerically equivalent and must be applied
// by the caller before weighting if wanted.
func (a Aggregator) ComputeIndex(estimates map[sensor.Gas]float64) (float64, string) {
	var idx float64
	for gas, w := range a.Weights {
		est, ok := estimates[gas]
		if !ok || math.IsNaN(est) || math.IsInf(est, 0) {
			continue
		}
		idx += w * est
	}

	return idx, a.Bands.Classify(idx)
}

// NormalizeSubScore maps an estimate to a [0,1] sub-score relative to a
// baseline and an upper bound, clamped at both ends. This is the paper's
// formulation; ComputeIndex deliberately does not apply it.
func NormalizeSubScore(x, baseline, upper float64) float64 {
	if upper <= baseline || math.IsNaN(x) {
		return 0
	}
	s := (x - baseline) / (upper - baseline)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
