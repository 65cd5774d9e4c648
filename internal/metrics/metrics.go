// Package metrics holds the Prometheus instruments for tables. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "holdem"

type Metrics struct {
	actionsApplied   *prometheus.CounterVec
	actionsRejected  *prometheus.CounterVec
	duplicates       prometheus.Counter
	handsStarted     prometheus.Counter
	handsFinished    *prometheus.CounterVec
	rakeCollected    prometheus.Counter
	integrityFailure prometheus.Counter
	submitLatency    prometheus.Histogram
	activeTables     prometheus.Gauge
	snapshotsSaved   prometheus.Counter
	snapshotErrors   prometheus.Counter
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		actionsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_applied_total",
			Help:      "Accepted player actions by type",
		}, []string{"action"}),
		actionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Rejected player actions by reason",
		}, []string{"reason"}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_requests_total",
			Help:      "Action requests answered from the dedupe cache",
		}),
		handsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hands_started_total",
			Help:      "Hands dealt",
		}),
		handsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hands_finished_total",
			Help:      "Hands settled, by outcome",
		}, []string{"outcome"}),
		rakeCollected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rake_chips_total",
			Help:      "Chips taken as rake",
		}),
		integrityFailure: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chip_integrity_failures_total",
			Help:      "Hands that failed chip conservation",
		}),
		submitLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time to validate and apply an action, lock wait included",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		activeTables: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tables",
			Help:      "Tables in the registry",
		}),
		snapshotsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_saved_total",
			Help:      "Snapshots written by the sync writer",
		}),
		snapshotErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_errors_total",
			Help:      "Snapshot writes that failed",
		}),
	}
}

func (m *Metrics) ActionApplied(action string) {
	if m != nil {
		m.actionsApplied.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ActionRejected(reason string) {
	if m != nil {
		m.actionsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) DuplicateRequest() {
	if m != nil {
		m.duplicates.Inc()
	}
}

func (m *Metrics) HandStarted() {
	if m != nil {
		m.handsStarted.Inc()
	}
}

// HandFinished records the outcome and any rake.
func (m *Metrics) HandFinished(showdown bool, rake int64) {
	if m == nil {
		return
	}
	outcome := "uncontested"
	if showdown {
		outcome = "showdown"
	}
	m.handsFinished.WithLabelValues(outcome).Inc()
	if rake > 0 {
		m.rakeCollected.Add(float64(rake))
	}
}

func (m *Metrics) IntegrityFailure() {
	if m != nil {
		m.integrityFailure.Inc()
	}
}

func (m *Metrics) ObserveSubmit(d time.Duration) {
	if m != nil {
		m.submitLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) SetActiveTables(n int) {
	if m != nil {
		m.activeTables.Set(float64(n))
	}
}

func (m *Metrics) SnapshotSaved(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.snapshotErrors.Inc()
		return
	}
	m.snapshotsSaved.Inc()
}
