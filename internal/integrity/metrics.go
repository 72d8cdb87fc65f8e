package integrity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	componentScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aerotrace_component_scans_total",
		Help: "Total number of component integrity scans",
	})

	exceptionsDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aerotrace_exceptions_detected_total",
		Help: "Newly detected integrity exceptions by severity",
	}, []string{"severity"})

	fleetScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aerotrace_fleet_scan_duration_seconds",
		Help:    "Duration of full fleet integrity sweeps",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

type fleetTimer struct{ start time.Time }

func startFleetTimer() fleetTimer { return fleetTimer{start: time.Now()} }

func (t fleetTimer) done() { fleetScanDuration.Observe(time.Since(t.start).Seconds()) }
