package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	ADC         ADCConfig         `yaml:"adc"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	Baseline    BaselineConfig    `yaml:"baseline"`
	Smoothing   SmoothingConfig   `yaml:"smoothing"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Channels    []ChannelConfig   `yaml:"channels"`
	Index       IndexConfig       `yaml:"index"`
	Alerts      AlertsConfig      `yaml:"alerts"`
	Report      ReportConfig      `yaml:"report"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the sensor bridge.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ADCConfig describes the analog converter and the sensor load resistors.
type ADCConfig struct {
	FullScale      int     `yaml:"full_scale"`      // maximum ADC code (1023 for 10-bit)
	LoadResistance float64 `yaml:"load_resistance"` // load resistor value (kOhm)
}

// SamplingConfig contains raw sampling parameters.
type SamplingConfig struct {
	Retries  int           `yaml:"retries"`  // retry bound for rail readings
	Count    int           `yaml:"count"`    // reads per filtered sample
	Interval time.Duration `yaml:"interval"` // delay between reads
}

// BaselineConfig contains clean-air baseline calibration parameters.
type BaselineConfig struct {
	Samples  int           `yaml:"samples"`
	Interval time.Duration `yaml:"interval"`
}

// SmoothingConfig contains the EMA blend factor.
type SmoothingConfig struct {
	Alpha float64 `yaml:"alpha"`
}

// CalibrationConfig contains curve calibration session parameters.
type CalibrationConfig struct {
	SamplesPerPoint int           `yaml:"samples_per_point"`
	SampleInterval  time.Duration `yaml:"sample_interval"`
	MinPoints       int           `yaml:"min_points"`
	MaxPoints       int           `yaml:"max_points"`
	SessionTimeout  time.Duration `yaml:"session_timeout"` // idle timeout for an abandoned session
}

// ChannelConfig describes one gas channel: which pin it taps, its clean-air
// factor and its factory-default concentration curve.
type ChannelConfig struct {
	Gas            string      `yaml:"gas"`
	Pin            int         `yaml:"pin"`
	CleanAirFactor float64     `yaml:"clean_air_factor"`
	Curve          CurveConfig `yaml:"curve"`
	Weight         float64     `yaml:"weight"` // composite index weight (0 = not contributing)
}

// CurveConfig holds the three power-law curve coefficients.
type CurveConfig struct {
	P0 float64 `yaml:"p0"`
	P1 float64 `yaml:"p1"`
	P2 float64 `yaml:"p2"`
}

// IndexConfig contains the severity classification ladder.
type IndexConfig struct {
	Bands []BandConfig `yaml:"bands"`
}

// BandConfig is one severity band: index values up to Max classify as Label.
// Values above the last band's Max take the last band's label.
type BandConfig struct {
	Max   float64 `yaml:"max"`
	Label string  `yaml:"label"`
}

// AlertsConfig contains absolute per-gas safety ceilings.
type AlertsConfig struct {
	CO2      float64 `yaml:"co2"`
	CO       float64 `yaml:"co"`
	LPG      float64 `yaml:"lpg"`
	Benzene  float64 `yaml:"benzene"`
	NOx      float64 `yaml:"nox"`
	Humidity float64 `yaml:"humidity"`
}

// ReportConfig contains reporting collaborator configuration.
type ReportConfig struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MQTTConfig contains MQTT broker configuration. An empty broker disables
// MQTT reporting.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MetricsConfig contains the Prometheus exposition endpoint configuration.
// An empty listen address disables the endpoint.
type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Codes       map[int]int `yaml:"codes"`        // baseline ADC code per pin
	Noise       int         `yaml:"noise"`        // peak-to-peak jitter in codes
	GlitchEvery int         `yaml:"glitch_every"` // every Nth read rails to zero (0 = never)
	Temperature float64     `yaml:"temperature"`
	Humidity    float64     `yaml:"humidity"`
}

// Default returns a default configuration with sensible values. The default
// curves come from the MQ-series datasheet log-log characteristics and are
// meant to be replaced by a calibration session.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
		ADC: ADCConfig{
			FullScale:      1023,
			LoadResistance: 10.0,
		},
		Sampling: SamplingConfig{
			Retries:  5,
			Count:    5,
			Interval: 20 * time.Millisecond,
		},
		Baseline: BaselineConfig{
			Samples:  50,
			Interval: 500 * time.Millisecond,
		},
		Smoothing: SmoothingConfig{
			Alpha: 0.25,
		},
		Calibration: CalibrationConfig{
			SamplesPerPoint: 10,
			SampleInterval:  100 * time.Millisecond,
			MinPoints:       2,
			MaxPoints:       10,
			SessionTimeout:  2 * time.Minute,
		},
		Channels: defaultChannels(),
		Index: IndexConfig{
			Bands: []BandConfig{
				{Max: 50, Label: "Good"},
				{Max: 100, Label: "Moderate"},
				{Max: 150, Label: "Advisory"},
				{Max: 200, Label: "Unhealthy"},
				{Max: 300, Label: "Severe"},
				{Max: 0, Label: "Hazardous"}, // catch-all
			},
		},
		Alerts: AlertsConfig{
			CO2:      500,
			CO:       15,
			LPG:      1000,
			Benzene:  5,
			NOx:      10,
			Humidity: 85,
		},
		Report: ReportConfig{
			MQTT: MQTTConfig{
				ClientID: "mqsense",
				Topic:    "mqsense/snapshot",
			},
			Metrics: MetricsConfig{
				ListenAddress: ":9105",
			},
		},
		Mock: MockConfig{
			Noise:       8,
			Temperature: 24.0,
			Humidity:    40.0,
		},
	}
}

// defaultChannels lays out the stock five-sensor board: MQ-2 on A0, MQ-7 on
// A1, MQ-9 on A2, MQ-135 on A3 and MQ-8 on A4. Gases sharing a sensor share
// its pin and clean-air factor.
func defaultChannels() []ChannelConfig {
	return []ChannelConfig{
		// MQ-2: LPG, CO, smoke
		{Gas: "lpg", Pin: 0, CleanAirFactor: 9.83, Curve: CurveConfig{P0: 2.758, P1: 0, P2: -1.085}},
		{Gas: "co", Pin: 0, CleanAirFactor: 9.83, Curve: CurveConfig{P0: 4.457, P1: 0, P2: -0.779}, Weight: 0.05},
		{Gas: "smoke", Pin: 0, CleanAirFactor: 9.83, Curve: CurveConfig{P0: 3.596, P1: 0, P2: -0.988}},
		// MQ-7: CO (secondary)
		{Gas: "co_mq7", Pin: 1, CleanAirFactor: 27.5, Curve: CurveConfig{P0: 1.994, P1: 0, P2: -1.510}, Weight: 0.10},
		// MQ-9: CH4, CO (secondary)
		{Gas: "ch4", Pin: 2, CleanAirFactor: 9.6, Curve: CurveConfig{P0: 3.028, P1: 0, P2: -1.073}, Weight: 0.10},
		{Gas: "co_mq9", Pin: 2, CleanAirFactor: 9.6, Curve: CurveConfig{P0: 2.766, P1: 0, P2: -1.047}, Weight: 0.10},
		// MQ-135: CO2, NH3, NOx, alcohol, benzene, general air
		{Gas: "co2", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 2.043, P1: 0, P2: -0.805}, Weight: 0.50},
		{Gas: "nh3", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 2.009, P1: 0, P2: -0.931}},
		{Gas: "nox", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 1.800, P1: 0, P2: -0.700}, Weight: 0.10},
		{Gas: "alcohol", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 1.888, P1: 0, P2: -0.724}},
		{Gas: "benzene", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 1.700, P1: 0, P2: -0.780}},
		{Gas: "air", Pin: 3, CleanAirFactor: 3.6, Curve: CurveConfig{P0: 2.000, P1: 0, P2: -0.800}, Weight: 0.05},
		// MQ-8: H2
		{Gas: "h2", Pin: 4, CleanAirFactor: 70.0, Curve: CurveConfig{P0: 2.990, P1: 0, P2: -3.347}, Weight: 0.05},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.ADC.FullScale == 0 {
		c.ADC.FullScale = def.ADC.FullScale
	}
	if c.ADC.LoadResistance == 0 {
		c.ADC.LoadResistance = def.ADC.LoadResistance
	}

	if c.Sampling.Retries == 0 {
		c.Sampling.Retries = def.Sampling.Retries
	}
	if c.Sampling.Count == 0 {
		c.Sampling.Count = def.Sampling.Count
	}
	if c.Sampling.Interval == 0 {
		c.Sampling.Interval = def.Sampling.Interval
	}

	if c.Baseline.Samples == 0 {
		c.Baseline.Samples = def.Baseline.Samples
	}
	if c.Baseline.Interval == 0 {
		c.Baseline.Interval = def.Baseline.Interval
	}

	if c.Smoothing.Alpha == 0 {
		c.Smoothing.Alpha = def.Smoothing.Alpha
	}

	if c.Calibration.SamplesPerPoint == 0 {
		c.Calibration.SamplesPerPoint = def.Calibration.SamplesPerPoint
	}
	if c.Calibration.SampleInterval == 0 {
		c.Calibration.SampleInterval = def.Calibration.SampleInterval
	}
	if c.Calibration.MinPoints == 0 {
		c.Calibration.MinPoints = def.Calibration.MinPoints
	}
	if c.Calibration.MaxPoints == 0 {
		c.Calibration.MaxPoints = def.Calibration.MaxPoints
	}
	if c.Calibration.SessionTimeout == 0 {
		c.Calibration.SessionTimeout = def.Calibration.SessionTimeout
	}

	if len(c.Channels) == 0 {
		c.Channels = def.Channels
	}

	if len(c.Index.Bands) == 0 {
		c.Index.Bands = def.Index.Bands
	}

	if c.Alerts == (AlertsConfig{}) {
		c.Alerts = def.Alerts
	}

	if c.Mock.Temperature == 0 && c.Mock.Humidity == 0 {
		c.Mock.Temperature = def.Mock.Temperature
		c.Mock.Humidity = def.Mock.Humidity
	}
}
