package sampling

import (
	"time"

	"mqsense/pkg/adc"
	"mqsense/pkg/clock"
)

// Sampler turns individual ADC reads into a single robust value per channel.
// Low-cost analog inputs commonly glitch to a rail (zero or saturation) for
// a single conversion; the sampler retries rail readings and trims outliers
// from a short burst of reads.
type Sampler struct {
	Device    adc.Device
	Clock     clock.Clock
	FullScale int           // ADC maximum code
	Retries   int           // retry bound when a read sits on a rail
	Count     int           // reads per filtered sample
	Interval  time.Duration // delay between reads
}

// New creates a Sampler with the given acquisition parameters.
func New(dev adc.Device, clk clock.Clock, fullScale, retries, count int, interval time.Duration) *Sampler {
	if retries <= 0 {
		retries = 1
	}
	if count <= 0 {
		count = 1
	}

	return &Sampler{
		Device:    dev,
		Clock:     clk,
		FullScale: fullScale,
		Retries:   retries,
		Count:     count,
		Interval:  interval,
	}
}

// Sample reads one raw value, retrying up to the retry bound while the code
// sits on a rail. If every attempt rails, the last attempt is returned; the
// resistance model flags it downstream.
func (s *Sampler) Sample(pin int) (int, error) {
	var raw int
	var err error

	for attempt := 0; attempt < s.Retries; attempt++ {
		raw, err = s.Device.ReadRaw(pin)
		if err != nil {
			return 0, err
		}
		if raw != 0 && raw != s.FullScale {
			return raw, nil
		}
		if attempt < s.Retries-1 {
			s.Clock.Sleep(s.Interval)
		}
	}

	return raw, nil
}

// FilteredSample takes Count individually-retried reads spaced by the
// inter-sample delay, discards exactly one minimum and one maximum, and
// returns the truncated mean of the remainder. With fewer than 3 reads the
// trimming step is skipped and the plain mean is returned.
func (s *Sampler) FilteredSample(pin int) (int, error) {
	reads := make([]int, 0, s.Count)

	for i := 0; i < s.Count; i++ {
		raw, err := s.Sample(pin)
		if err != nil {
			return 0, err
		}
		reads = append(reads, raw)
		if i < s.Count-1 {
			s.Clock.Sleep(s.Interval)
		}
	}

	return trimmedMean(reads), nil
}

// trimmedMean drops one minimum and one maximum, then averages. Too few
// values for trimming means a plain mean.
func trimmedMean(reads []int) int {
	if len(reads) == 0 {
		return 0
	}

	sum := 0
	for _, r := range reads {
		sum += r
	}

	if len(reads) < 3 {
		return sum / len(reads)
	}

	minVal, maxVal := reads[0], reads[0]
	for _, r := range reads[1:] {
		if r < minVal {
			minVal = r
		}
		if r > maxVal {
			maxVal = r
		}
	}

	return (sum - minVal - maxVal) / (len(reads) - 2)
}
