package station

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"mqsense/pkg/curve"
	"mqsense/pkg/sensor"
)

// Calibration is an operator-driven curve calibration for one channel. It
// holds the station mutex for its whole lifetime: no measurement cycle
// interleaves with a running session. Calibration is all-or-nothing: only
// an accepted fit replaces the channel's curve.
type Calibration struct {
	st   *Station
	ch   *sensor.Channel
	sess *curve.Session
	done bool
}

// StartCalibration opens a session for the given gas and blocks the
// measurement loop until the session finishes or aborts.
func (s *Station) StartCalibration(gas sensor.Gas) (*Calibration, error) {
	ch, ok := s.byGas[gas]
	if !ok {
		return nil, fmt.Errorf("unknown gas channel: %s", gas)
	}

	s.mu.Lock()

	c := &Calibration{st: s, ch: ch}
	c.sess = curve.NewSession(c.measureRatio, s.clk, s.cfg.Calibration.SessionTimeout)
	return c, nil
}

// Begin declares how many reference points the operator will supply.
func (c *Calibration) Begin(nPoints int) error {
	if err := c.sess.Begin(nPoints); err != nil {
		c.release()
		return err
	}
	return nil
}

// CollectPoint measures the resistance ratio at the reference concentration
// the operator has prepared. A failed measurement aborts the session.
func (c *Calibration) CollectPoint(refConcentration float64) error {
	err := c.sess.CollectPoint(refConcentration)
	if err != nil && c.sess.State() == curve.StateAborted {
		c.release()
	}
	return err
}

// Finish fits the collected points and, on acceptance, installs the new
// curve. On rejection the channel's prior curve remains in force.
func (c *Calibration) Finish() (curve.Curve, error) {
	fitted, err := c.sess.Finish()
	defer c.release()

	if err != nil {
		log.WithError(err).WithField("gas", c.ch.Gas).Warn("calibration rejected, keeping prior curve")
		return curve.Curve{}, err
	}

	if !c.ch.SetCurve(fitted) {
		return curve.Curve{}, curve.ErrDegenerateCalibration
	}

	log.WithFields(log.Fields{
		"gas": c.ch.Gas,
		"p0":  fitted.P0,
		"p1":  fitted.P1,
		"p2":  fitted.P2,
	}).Info("calibration accepted")
	return fitted, nil
}

// Abort cancels the session and resumes measurement.
func (c *Calibration) Abort() {
	c.sess.Abort()
	c.release()
}

// State exposes the underlying session state.
func (c *Calibration) State() curve.SessionState {
	return c.sess.State()
}

// release gives the measurement loop back. Idempotent.
func (c *Calibration) release() {
	if c.done {
		return
	}
	c.done = true
	c.st.mu.Unlock()
}

// measureRatio averages the configured number of valid resistance samples
// at the current (known) reference concentration and normalizes by the
// channel's Ro. Non-finite readings are discarded; zero valid readings fail
// the whole point.
func (c *Calibration) measureRatio() (float64, error) {
	cfg := c.st.cfg.Calibration

	var sum float64
	valid := 0
	for i := 0; i < cfg.SamplesPerPoint; i++ {
		raw, err := c.st.sampler.Sample(c.ch.Pin)
		if err == nil {
			r, rerr := c.st.model.ResistanceOf(raw)
			if rerr == nil && !math.IsNaN(r) && !math.IsInf(r, 0) && r > 0 {
				sum += r
				valid++
			}
		}
		if i < cfg.SamplesPerPoint-1 {
			c.st.clk.Sleep(cfg.SampleInterval)
		}
	}

	if valid == 0 {
		return 0, curve.ErrInvalidMeasurement
	}

	return (sum / float64(valid)) / c.ch.Ro, nil
}

// RunCalibration drives a full session from a prepared list of reference
// concentrations. Useful for scripted two-point recalibration; interactive
// operators drive the session events directly.
func (s *Station) RunCalibration(gas sensor.Gas, refs []float64) (curve.Curve, error) {
	c, err := s.StartCalibration(gas)
	if err != nil {
		return curve.Curve{}, err
	}

	if err := c.Begin(len(refs)); err != nil {
		return curve.Curve{}, err
	}
	for _, ref := range refs {
		if err := c.CollectPoint(ref); err != nil {
			if c.sess.State() != curve.StateAborted {
				c.Abort()
			}
			return curve.Curve{}, err
		}
	}

	return c.Finish()
}
