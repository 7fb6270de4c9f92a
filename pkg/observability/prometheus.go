package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "brickyard"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	snaps        *prometheus.CounterVec
	snapDuration prometheus.Histogram
	scanned      prometheus.Histogram
	commits      *prometheus.CounterVec
	pieces       prometheus.Gauge
	history      *prometheus.CounterVec
	imports      *prometheus.CounterVec
	storeOps     *prometheus.HistogramVec
	requests     *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		snaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snaps_total",
			Help:      "Candidate computations by hit source and outcome.",
		}, []string{"source", "found"}),
		snapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snap_duration_seconds",
			Help:      "Time spent computing one candidate.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		scanned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snap_scanned_pieces",
			Help:      "Pieces examined per candidate computation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Committed pieces by type and contact.",
		}, []string{"type", "contact"}),
		pieces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pieces",
			Help:      "Pieces in the live build after the last commit.",
		}),
		history: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_operations_total",
			Help:      "History operations by kind and whether they changed the build.",
		}, []string{"op", "applied"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Build imports by outcome.",
		}, []string{"status"}),
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Build library operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op", "status"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(p.snaps, p.snapDuration, p.scanned, p.commits, p.pieces,
		p.history, p.imports, p.storeOps, p.requests)
	return p
}

func (p *Prometheus) OnSnap(source string, scanned int, found bool, d time.Duration) {
	p.snaps.WithLabelValues(source, strconv.FormatBool(found)).Inc()
	p.snapDuration.Observe(d.Seconds())
	p.scanned.Observe(float64(scanned))
}

func (p *Prometheus) OnCommit(pieceType, contact string, total int) {
	p.commits.WithLabelValues(pieceType, contact).Inc()
	p.pieces.Set(float64(total))
}

func (p *Prometheus) OnHistory(op string, applied bool) {
	p.history.WithLabelValues(op, strconv.FormatBool(applied)).Inc()
}

func (p *Prometheus) OnImport(_ int, err error) {
	p.imports.WithLabelValues(status(err)).Inc()
}

func (p *Prometheus) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	p.storeOps.WithLabelValues(backend, op, status(err)).Observe(d.Seconds())
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
