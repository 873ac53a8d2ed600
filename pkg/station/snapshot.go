package station

import (
	"encoding/json"
	"math"
	"time"

	"mqsense/pkg/index"
	"mqsense/pkg/sensor"
)

// Snapshot is the per-cycle result: the named gas estimates, the composite
// index with its severity label, the triggered absolute alerts and the
// pass-through environmental readings. It has no identity beyond its
// emission; ownership passes to the reporters.
type Snapshot struct {
	Timestamp   time.Time
	Estimates   map[sensor.Gas]float64
	Index       float64
	Severity    string
	Alerts      []index.AlertKind
	Temperature float64
	Humidity    float64
}

// MarshalJSON emits the flat wire object the dashboard ingests: one key per
// gas, sd_aqi, sd_aqi_level, alerts, temperature, humidity and timestamp_ms.
// Estimates without data this cycle (NaN) are omitted rather than encoded.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(s.Estimates)+6)

	for gas, est := range s.Estimates {
		if math.IsNaN(est) || math.IsInf(est, 0) {
			continue
		}
		payload[string(gas)] = est
	}

	alerts := make([]string, 0, len(s.Alerts))
	for _, a := range s.Alerts {
		alerts = append(alerts, string(a))
	}

	payload["sd_aqi"] = s.Index
	payload["sd_aqi_level"] = s.Severity
	payload["alerts"] = alerts
	if !math.IsNaN(s.Temperature) {
		payload["temperature"] = s.Temperature
	}
	if !math.IsNaN(s.Humidity) {
		payload["humidity"] = s.Humidity
	}
	payload["timestamp_ms"] = s.Timestamp.UnixMilli()

	return json.Marshal(payload)
}
