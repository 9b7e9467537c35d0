package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playbackAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepconnect_playback_attempts_total",
			Help: "Keep-alive playback attempts by result",
		},
		[]string{"result"},
	)

	deviceRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keepconnect_device_retries_total",
			Help: "Retry waits entered because no target device accepted the tone",
		},
	)

	cyclesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keepconnect_cycles_skipped_total",
			Help: "Cycles where the tone was skipped because other audio was playing",
		},
	)

	schedulerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "keepconnect_scheduler_running",
			Help: "1 while the keep-alive scheduler is running",
		},
	)
)
