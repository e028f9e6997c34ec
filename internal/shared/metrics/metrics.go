package metrics

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed by Handler.
var Registry = prometheus.NewRegistry()

var (
	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cof_uploads_total",
		Help: "Document uploads by outcome",
	}, []string{"outcome"})

	uploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cof_upload_duration_ms",
		Help:    "Upload round-trip duration in milliseconds",
		Buckets: []float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
	})

	exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cof_exports_total",
		Help: "Rendered export artifacts by format and outcome",
	}, []string{"format", "outcome"})

	remoteCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cof_remote_call_duration_seconds",
		Help:    "Duration of calls to remote collaborators",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "status"})

	panicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cof_http_panics_total",
		Help: "Handler panics recovered by the router",
	})
)

func init() {
	Registry.MustRegister(
		uploadsTotal,
		uploadDuration,
		exportsTotal,
		remoteCallDuration,
		panicsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncUpload increments the upload counter for outcome (success, rejected, failed).
func IncUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUploadDurationMs records an upload duration in milliseconds.
func ObserveUploadDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	uploadDuration.Observe(value)
}

// IncExport increments the export counter.
func IncExport(format, outcome string) {
	exportsTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveRemoteCall records the duration of a call to target.
func ObserveRemoteCall(target, status string, d time.Duration) {
	remoteCallDuration.WithLabelValues(target, status).Observe(d.Seconds())
}

// IncPanic counts a recovered handler panic.
func IncPanic() {
	panicsTotal.Inc()
}

// PanicsCounter exposes the panic counter to tests.
func PanicsCounter() prometheus.Counter { return panicsTotal }

// RegisterDB exposes pool stats for db under the given name. Registering
// the same name twice is ignored.
func RegisterDB(db *sql.DB, name string) {
	if db == nil {
		return
	}
	err := Registry.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		panic(err)
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
