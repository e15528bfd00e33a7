package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealradar_scans_total",
			Help: "Total number of scan passes",
		},
		[]string{"result"},
	)
	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dealradar_scan_duration_seconds",
			Help:    "Scan pass duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	fetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealradar_fetch_failures_total",
			Help: "Product pages that could not be read",
		},
		[]string{"reason"},
	)
	observationsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealradar_observations_recorded_total",
			Help: "Price observations recorded",
		},
		[]string{"seller"},
	)
	alertsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealradar_alerts_created_total",
			Help: "Price alerts created",
		},
	)
)
