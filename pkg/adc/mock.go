package adc

import (
	"fmt"
	"math/rand"
	"sync"

	"mqsense/pkg/config"
)

// Mock simulates the sensor bridge for testing and development. Each pin
// holds a baseline ADC code that readings jitter around; an optional glitch
// period injects rail readings to exercise the sampler's retry path.
type Mock struct {
	cfg       *config.MockConfig
	fullScale int

	mu        sync.Mutex
	connected bool
	codes     map[int]int
	reads     int
	rng       *rand.Rand
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig, fullScale int) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Noise:       8,
			Temperature: 24.0,
			Humidity:    40.0,
		}
	}

	codes := make(map[int]int, len(cfg.Codes))
	for pin, code := range cfg.Codes {
		codes[pin] = code
	}

	return &Mock{
		cfg:       cfg,
		fullScale: fullScale,
		codes:     codes,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// IsConnected returns whether the mock is "connected".
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SetCode changes the baseline code for a pin, simulating a gas event.
func (m *Mock) SetCode(pin, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[pin] = code
}

// ReadRaw returns the pin's baseline code plus noise.
func (m *Mock) ReadRaw(pin int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, fmt.Errorf("not connected")
	}

	m.reads++
	if m.cfg.GlitchEvery > 0 && m.reads%m.cfg.GlitchEvery == 0 {
		return 0, nil
	}

	code, ok := m.codes[pin]
	if !ok {
		code = m.fullScale / 2
	}

	if m.cfg.Noise > 0 {
		code += m.rng.Intn(2*m.cfg.Noise+1) - m.cfg.Noise
	}

	if code < 0 {
		code = 0
	}
	if code > m.fullScale {
		code = m.fullScale
	}

	return code, nil
}

// ReadEnvironment returns the configured ambient conditions.
func (m *Mock) ReadEnvironment() (float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, 0, fmt.Errorf("not connected")
	}

	return m.cfg.Temperature, m.cfg.Humidity, nil
}
