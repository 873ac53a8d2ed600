// Package station runs the measurement loop: it owns the channel table,
// paces the sampling pipeline every cycle and hands the resulting snapshot
// to the registered reporters.
package station

import (
	"context"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"mqsense/pkg/adc"
	"mqsense/pkg/clock"
	"mqsense/pkg/config"
	"mqsense/pkg/curve"
	"mqsense/pkg/index"
	"mqsense/pkg/sampling"
	"mqsense/pkg/sensor"
)

// Reporter receives each cycle's snapshot. Reporters must not block the
// loop for long; failures are theirs to absorb.
type Reporter interface {
	Report(Snapshot)
}

// Station drives the per-cycle pipeline. All channel state is owned here;
// calibration sessions serialize against measurement through the station
// mutex, so a session blocks the loop until it completes or aborts.
type Station struct {
	mu sync.Mutex

	cfg      *config.Config
	device   adc.Device
	clk      clock.Clock
	sampler  *sampling.Sampler
	model    sensor.Model
	baseline sensor.BaselineCalibrator

	channels []*sensor.Channel
	byGas    map[sensor.Gas]*sensor.Channel

	agg        index.Aggregator
	thresholds index.Thresholds

	reporters []Reporter
}

// New creates a station from the configuration, with all channels at their
// default curves and the fallback baseline.
func New(cfg *config.Config, dev adc.Device, clk clock.Clock) *Station {
	sampler := sampling.New(dev, clk,
		cfg.ADC.FullScale,
		cfg.Sampling.Retries,
		cfg.Sampling.Count,
		cfg.Sampling.Interval,
	)
	model := sensor.Model{
		FullScale:      cfg.ADC.FullScale,
		LoadResistance: cfg.ADC.LoadResistance,
	}

	weights := make(index.Weights)
	bands := make(index.Classifier, 0, len(cfg.Index.Bands))
	for _, b := range cfg.Index.Bands {
		bands = append(bands, index.Band{Max: b.Max, Label: b.Label})
	}

	channels := make([]*sensor.Channel, 0, len(cfg.Channels))
	byGas := make(map[sensor.Gas]*sensor.Channel, len(cfg.Channels))
	for _, cc := range cfg.Channels {
		gas := sensor.Gas(cc.Gas)
		ch := sensor.NewChannel(gas, cc.Pin, cc.CleanAirFactor, curve.Curve{
			P0: cc.Curve.P0,
			P1: cc.Curve.P1,
			P2: cc.Curve.P2,
		})
		channels = append(channels, ch)
		byGas[gas] = ch
		if cc.Weight > 0 {
			weights[gas] = cc.Weight
		}
	}

	return &Station{
		cfg:     cfg,
		device:  dev,
		clk:     clk,
		sampler: sampler,
		model:   model,
		baseline: sensor.BaselineCalibrator{
			Sampler:  sampler,
			Model:    model,
			Samples:  cfg.Baseline.Samples,
			Interval: cfg.Baseline.Interval,
			Clock:    clk,
		},
		channels: channels,
		byGas:    byGas,
		agg: index.Aggregator{
			Weights: weights,
			Bands:   bands,
		},
		thresholds: index.Thresholds{
			CO2:      cfg.Alerts.CO2,
			CO:       cfg.Alerts.CO,
			LPG:      cfg.Alerts.LPG,
			Benzene:  cfg.Alerts.Benzene,
			NOx:      cfg.Alerts.NOx,
			Humidity: cfg.Alerts.Humidity,
		},
	}
}

// AddReporter registers a snapshot consumer.
func (s *Station) AddReporter(r Reporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reporters = append(s.reporters, r)
}

// Channel returns the channel for a gas, or nil.
func (s *Station) Channel(gas sensor.Gas) *sensor.Channel {
	return s.byGas[gas]
}

// CalibrateBaselines establishes every channel's clean-air Ro. Sensors are
// calibrated once per physical tap; gases sharing a tap share the result. A
// failed tap falls back to the default Ro and the boot continues.
func (s *Station) CalibrateBaselines() {
	s.mu.Lock()
	defer s.mu.Unlock()

	type tap struct {
		pin    int
		factor float64
	}
	ros := make(map[tap]float64)

	for _, ch := range s.channels {
		t := tap{pin: ch.Pin, factor: ch.CleanAirFactor}
		ro, ok := ros[t]
		if !ok {
			ro = s.baseline.Calibrate(ch.Pin, ch.CleanAirFactor)
			ros[t] = ro
			log.WithFields(log.Fields{"pin": ch.Pin, "ro": ro}).Info("baseline calibrated")
		}
		if !ch.SetRo(ro) {
			log.WithFields(log.Fields{"gas": ch.Gas, "ro": ro}).Warn("baseline rejected, keeping prior Ro")
		}
	}
}

// Cycle performs one measurement cycle and reports the snapshot. A channel
// whose reading fails this cycle degrades to no data; the cycle itself never
// fails.
func (s *Station) Cycle() Snapshot {
	s.mu.Lock()

	// One filtered sample per physical tap, shared by its gases.
	resistances := make(map[int]float64)
	for _, ch := range s.channels {
		if _, ok := resistances[ch.Pin]; ok {
			continue
		}
		resistances[ch.Pin] = s.readResistance(ch.Pin)
	}

	estimates := make(map[sensor.Gas]float64, len(s.channels))
	for _, ch := range s.channels {
		ch.Smooth(resistances[ch.Pin], s.cfg.Smoothing.Alpha)
		estimates[ch.Gas] = ch.Estimate()
	}

	temperature, humidity, err := s.device.ReadEnvironment()
	if err != nil {
		log.WithError(err).Debug("environment read failed")
		temperature, humidity = math.NaN(), math.NaN()
	}

	idx, severity := s.agg.ComputeIndex(estimates)
	alerts := s.thresholds.EvaluateAlerts(estimates, humidity)

	snap := Snapshot{
		Timestamp:   s.clk.Now(),
		Estimates:   estimates,
		Index:       idx,
		Severity:    severity,
		Alerts:      alerts,
		Temperature: temperature,
		Humidity:    humidity,
	}

	reporters := s.reporters
	s.mu.Unlock()

	for _, r := range reporters {
		r.Report(snap)
	}

	return snap
}

// readResistance takes one filtered sample on a pin and converts it. Any
// failure yields NaN, which the smoother ignores.
func (s *Station) readResistance(pin int) float64 {
	raw, err := s.sampler.FilteredSample(pin)
	if err != nil {
		log.WithError(err).WithField("pin", pin).Debug("sample failed")
		return math.NaN()
	}

	r, err := s.model.ResistanceOf(raw)
	if err != nil {
		log.WithError(err).WithField("pin", pin).Debug("resistance conversion failed")
		return math.NaN()
	}

	return r
}

// Run executes measurement cycles at the given cadence until the context is
// canceled.
func (s *Station) Run(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.Cycle()
		s.clk.Sleep(interval)
	}
}
