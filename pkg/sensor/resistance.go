package sensor

import (
	"errors"
	"math"
)

var (
	// ErrInvalidReading marks a raw ADC code that cannot be converted:
	// a zero code after retries means the divider is open or shorted.
	ErrInvalidReading = errors.New("invalid reading: raw code is zero")

	// ErrInvalidResistance marks a non-finite resistance value.
	ErrInvalidResistance = errors.New("invalid resistance")
)

// Model converts a raw ADC code into the sensor's physical resistance via
// the voltage divider formed with the load resistor:
//
//	R = Rload * (FullScale - raw) / raw
type Model struct {
	FullScale      int     // ADC maximum code (1023 for a 10-bit converter)
	LoadResistance float64 // load resistor value (kOhm)
}

// ResistanceOf converts a raw code to a resistance in the load resistor's
// unit. A zero code is a hard error; callers must resample, never retry the
// same value.
func (m Model) ResistanceOf(raw int) (float64, error) {
	if raw == 0 {
		return 0, ErrInvalidReading
	}

	r := m.LoadResistance * float64(m.FullScale-raw) / float64(raw)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, ErrInvalidResistance
	}

	return r, nil
}
