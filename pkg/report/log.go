// Package report delivers snapshots to the external collaborators: the
// structured log, the MQTT broker and the Prometheus exposition endpoint.
package report

import (
	log "github.com/sirupsen/logrus"

	"mqsense/pkg/station"
)

// Ensure the reporters implement station.Reporter.
var (
	_ station.Reporter = (*Log)(nil)
	_ station.Reporter = (*MQTT)(nil)
	_ station.Reporter = (*Prometheus)(nil)
)

// Log writes each snapshot to the structured log.
type Log struct{}

// Report logs the composite index, its severity and any alerts.
func (Log) Report(snap station.Snapshot) {
	fields := log.Fields{
		"sd_aqi":   snap.Index,
		"severity": snap.Severity,
	}
	if len(snap.Alerts) > 0 {
		fields["alerts"] = snap.Alerts
	}
	log.WithFields(fields).Info("cycle")
}
