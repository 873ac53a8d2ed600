// Package curve holds the power-law concentration curves of the gas channels
// and the procedures that fit them from reference measurements.
//
// A curve maps a normalized resistance ratio to an estimated concentration:
//
//	concentration = 10^(((ln(ratio) - P1) / P2) + P0)
//
// which is a line in log-log space; fitting works on x = ln(ratio),
// y = log10(concentration).
package curve

import (
	"errors"
	"math"
)

// Calibration point bounds for a fitting session.
const (
	MinPoints = 2
	MaxPoints = 10
)

var (
	// ErrDegenerateCalibration marks fit input with zero spread, a
	// near-zero slope, or non-positive values.
	ErrDegenerateCalibration = errors.New("degenerate calibration data")

	// ErrInsufficientCalibrationData marks a fit attempted with fewer than
	// two valid reference points.
	ErrInsufficientCalibrationData = errors.New("insufficient calibration data")

	// ErrInvalidMeasurement marks a calibration point for which no valid
	// resistance sample could be obtained.
	ErrInvalidMeasurement = errors.New("no valid measurement for calibration point")
)

// Curve holds the three coefficients of the power-law transform.
type Curve struct {
	P0 float64
	P1 float64
	P2 float64
}

// Concentration applies the curve to a resistance ratio. A non-positive or
// non-finite ratio yields NaN rather than an error: a transient invalid
// reading on one channel must not halt the cycle for the others.
func (c Curve) Concentration(ratio float64) float64 {
	if c.P2 == 0 {
		return math.NaN()
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return math.NaN()
	}

	return math.Pow(10, ((math.Log(ratio)-c.P1)/c.P2)+c.P0)
}

// Valid reports whether the curve can be used by the estimator.
func (c Curve) Valid() bool {
	return c.P2 != 0 &&
		!math.IsNaN(c.P0) && !math.IsInf(c.P0, 0) &&
		!math.IsNaN(c.P1) && !math.IsInf(c.P1, 0) &&
		!math.IsNaN(c.P2) && !math.IsInf(c.P2, 0)
}

// Point is one calibration reference: a known gas concentration and the
// resistance ratio measured at it.
type Point struct {
	Concentration float64
	Ratio         float64
}

// FitTwoPoint derives a curve from exactly two reference points. The slope
// comes from the secant between the points in log-log space and the curve is
// anchored at ln(ratio) = 0.
func FitTwoPoint(a, b Point) (Curve, error) {
	if a.Concentration <= 0 || b.Concentration <= 0 || a.Ratio <= 0 || b.Ratio <= 0 {
		return Curve{}, ErrDegenerateCalibration
	}

	x1, y1 := math.Log(a.Ratio), math.Log10(a.Concentration)
	x2, y2 := math.Log(b.Ratio), math.Log10(b.Concentration)

	if math.Abs(x2-x1) < 1e-6 {
		return Curve{}, ErrDegenerateCalibration
	}

	m := (y2 - y1) / (x2 - x1)
	if math.Abs(m) < 1e-12 {
		return Curve{}, ErrDegenerateCalibration
	}

	c := Curve{
		P2: 1 / m,
		P1: 0,
	}
	c.P0 = y1 - x1/c.P2

	if !c.Valid() {
		return Curve{}, ErrDegenerateCalibration
	}
	return c, nil
}

// FitLeastSquares derives a curve by linear regression over 2..10 reference
// points in log-log space. Unlike the two-point fit, the curve is centered
// at the calibration data's centroid, which conditions the fit better.
func FitLeastSquares(points []Point) (Curve, error) {
	n := len(points)
	if n < MinPoints {
		return Curve{}, ErrInsufficientCalibrationData
	}
	if n > MaxPoints {
		return Curve{}, ErrDegenerateCalibration
	}

	var sumX, sumY, sumXX, sumXY float64
	for _, p := range points {
		if p.Concentration <= 0 || p.Ratio <= 0 {
			return Curve{}, ErrDegenerateCalibration
		}
		x := math.Log(p.Ratio)
		y := math.Log10(p.Concentration)
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if math.Abs(denom) < 1e-12 {
		return Curve{}, ErrDegenerateCalibration
	}

	a := (fn*sumXY - sumX*sumY) / denom
	if math.Abs(a) < 1e-12 {
		// A near-zero slope would make P2 diverge.
		return Curve{}, ErrDegenerateCalibration
	}
	b := (sumY - a*sumX) / fn

	c := Curve{
		P2: 1 / a,
		P1: sumX / fn,
	}
	c.P0 = b + c.P1/c.P2

	if !c.Valid() {
		return Curve{}, ErrDegenerateCalibration
	}
	return c, nil
}
