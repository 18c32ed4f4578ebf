package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_syncs_total",
		Help: "Total number of completed checkpoint-and-sync passes.",
	})
	syncFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_sync_failures_total",
		Help: "Number of sync passes that failed to replace the canonical snapshot.",
	})
	syncBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_sync_bytes_total",
		Help: "Cumulative bytes of database snapshots uploaded to the store.",
	})
	auxFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_aux_upload_failures_total",
		Help: "Number of auxiliary file uploads that failed.",
	})
	lastSyncTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapsync_last_sync_timestamp_seconds",
		Help: "Unix time of the last successful snapshot replacement.",
	})
	restoredObjectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_restored_objects_total",
		Help: "Objects downloaded into the workspace by restore-on-start.",
	})
	restoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapsync_restore_failures_total",
		Help: "Objects that failed to download during restore-on-start.",
	})
)
