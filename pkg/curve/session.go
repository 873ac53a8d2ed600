package curve

import (
	"errors"
	"fmt"
	"time"

	"mqsense/pkg/clock"
)

// ErrSessionTimeout marks a calibration event arriving after the session's
// idle deadline. An abandoned session must not hold the measurement loop
// hostage forever.
var ErrSessionTimeout = errors.New("calibration session timed out")

// SessionState is the state of an interactive calibration session.
type SessionState int

const (
	StateAwaitingCommand SessionState = iota
	StateParsingParameters
	StateCollectingPoint
	StateFitting
	StateCurveAccepted
	StateFitRejected
	StateAborted
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateAwaitingCommand:
		return "awaiting-command"
	case StateParsingParameters:
		return "parsing-parameters"
	case StateCollectingPoint:
		return "collecting-point"
	case StateFitting:
		return "fitting"
	case StateCurveAccepted:
		return "curve-accepted"
	case StateFitRejected:
		return "fit-rejected"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// terminal reports whether the session has finished.
func (s SessionState) terminal() bool {
	return s == StateCurveAccepted || s == StateFitRejected || s == StateAborted
}

// MeasureFunc obtains one averaged resistance ratio at the reference
// concentration the operator has prepared. It returns ErrInvalidMeasurement
// when no valid resistance sample could be taken.
type MeasureFunc func() (float64, error)

// Session is an interactive calibration session for one channel, driven by
// discrete operator events: Begin with a point count, CollectPoint once per
// prepared reference concentration, Finish to fit. It is all-or-nothing: the
// fitted curve is only handed out on success, and the caller applies it; an
// abort or rejection at any stage leaves the channel's prior curve in force.
type Session struct {
	state    SessionState
	points   []Point
	target   int
	measure  MeasureFunc
	clk      clock.Clock
	timeout  time.Duration
	deadline time.Time
}

// NewSession creates a session. timeout is the idle bound between operator
// events; zero disables it.
func NewSession(measure MeasureFunc, clk clock.Clock, timeout time.Duration) *Session {
	return &Session{
		state:   StateAwaitingCommand,
		measure: measure,
		clk:     clk,
		timeout: timeout,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState { return s.state }

// Points returns the reference points collected so far.
func (s *Session) Points() []Point { return s.points }

// Begin starts the session for the given number of reference points.
func (s *Session) Begin(nPoints int) error {
	if s.state != StateAwaitingCommand {
		return fmt.Errorf("cannot begin calibration in state %s", s.state)
	}

	s.state = StateParsingParameters
	if nPoints < MinPoints {
		s.state = StateAborted
		return ErrInsufficientCalibrationData
	}
	if nPoints > MaxPoints {
		s.state = StateAborted
		return fmt.Errorf("%w: %d reference points (max %d)", ErrDegenerateCalibration, nPoints, MaxPoints)
	}

	s.target = nPoints
	s.state = StateCollectingPoint
	s.touch()
	return nil
}

// CollectPoint measures the resistance ratio at the given reference
// concentration. A failed measurement aborts the whole session.
func (s *Session) CollectPoint(refConcentration float64) error {
	if s.state != StateCollectingPoint {
		return fmt.Errorf("cannot collect a point in state %s", s.state)
	}
	if s.expired() {
		s.state = StateAborted
		return ErrSessionTimeout
	}

	ratio, err := s.measure()
	if err != nil {
		s.state = StateAborted
		return fmt.Errorf("calibration point %d: %w", len(s.points)+1, err)
	}

	s.points = append(s.points, Point{Concentration: refConcentration, Ratio: ratio})
	if len(s.points) == s.target {
		s.state = StateFitting
	}
	s.touch()
	return nil
}

// Finish fits the curve once all points are collected. The returned curve is
// only usable when err is nil.
func (s *Session) Finish() (Curve, error) {
	if s.state != StateFitting {
		if s.state == StateCollectingPoint {
			s.state = StateAborted
			return Curve{}, fmt.Errorf("%w: %d of %d points collected", ErrInsufficientCalibrationData, len(s.points), s.target)
		}
		return Curve{}, fmt.Errorf("cannot fit in state %s", s.state)
	}
	if s.expired() {
		s.state = StateAborted
		return Curve{}, ErrSessionTimeout
	}

	var c Curve
	var err error
	if len(s.points) == 2 {
		c, err = FitTwoPoint(s.points[0], s.points[1])
	} else {
		c, err = FitLeastSquares(s.points)
	}

	if err != nil {
		s.state = StateFitRejected
		return Curve{}, err
	}

	s.state = StateCurveAccepted
	return c, nil
}

// Abort cancels the session. Aborting a finished session is a no-op.
func (s *Session) Abort() {
	if !s.state.terminal() {
		s.state = StateAborted
	}
}

// touch refreshes the idle deadline after an operator event.
func (s *Session) touch() {
	if s.timeout > 0 {
		s.deadline = s.clk.Now().Add(s.timeout)
	}
}

// expired reports whether the idle deadline has passed.
func (s *Session) expired() bool {
	return s.timeout > 0 && s.clk.Now().After(s.deadline)
}
