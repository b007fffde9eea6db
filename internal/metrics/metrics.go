// Package metrics exports a finished scan in the Prometheus text format so a
// node_exporter textfile collector can pick it up.
package metrics

import (
	"fmt"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

var statuses = []core.Status{core.StatusClear, core.StatusFlagged, core.StatusUnsupported, core.StatusError}

// Registry builds a fresh registry describing rep.
func Registry(rep *core.Report) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	suspects := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "procfinder_check_suspects",
		Help: "Number of PIDs flagged by a check in the last scan.",
	}, []string{"check"})
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "procfinder_check_status",
		Help: "1 for the status a check ended in, 0 otherwise.",
	}, []string{"check", "status"})
	checkSeconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "procfinder_check_duration_seconds",
		Help: "Time spent in each check.",
	}, []string{"check"})
	processes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "procfinder_snapshot_processes",
		Help: "Processes in the scanned snapshot.",
	})
	scanSeconds := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "procfinder_scan_duration_seconds",
		Help: "Wall time of the last scan.",
	})
	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "procfinder_last_scan_timestamp_seconds",
		Help: "Unix time the last scan started.",
	})
	reg.MustRegister(suspects, status, checkSeconds, processes, scanSeconds, lastScan)

	for _, res := range rep.Results {
		suspects.WithLabelValues(res.Check).Set(float64(len(res.PIDs)))
		checkSeconds.WithLabelValues(res.Check).Set(res.Duration.Seconds())
		for _, s := range statuses {
			v := 0.0
			if res.Status == s {
				v = 1
			}
			status.WithLabelValues(res.Check, string(s)).Set(v)
		}
	}
	processes.Set(float64(len(rep.PIDs)))
	scanSeconds.Set(rep.Duration.Seconds())
	lastScan.Set(float64(rep.StartedAt.Unix()))
	return reg
}

// WriteTextfile writes rep to filename atomically.
func WriteTextfile(rep *core.Report, filename string) error {
	if err := prometheus.WriteToTextfile(filename, Registry(rep)); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
