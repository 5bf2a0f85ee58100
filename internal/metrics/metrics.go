// Package metrics exposes Prometheus collectors for scoring activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records analyses, produced scores, aggregate recomputes and
// moderator alerts. A nil *Metrics is valid and records nothing.
type Metrics struct {
	analyses   *prometheus.CounterVec
	flags      *prometheus.CounterVec
	scores     *prometheus.HistogramVec
	recomputes *prometheus.CounterVec
	alerts     *prometheus.CounterVec
}

// MustNew constructs a Metrics instance using the provided registerer.
// Registration errors panic, except that an identical collector already
// registered is reused so tests and repeated wiring share one set.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	analyses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindred",
			Name:      "analyses_total",
			Help:      "Text analyses run, by kind.",
		},
		[]string{"kind"},
	)
	flags := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindred",
			Name:      "analysis_flags_total",
			Help:      "Flags raised by text analysis.",
		},
		[]string{"flag"},
	)
	scores := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kindred",
			Name:      "score",
			Help:      "Distribution of produced 0-100 scores, by component.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"component"},
	)
	recomputes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindred",
			Name:      "recomputes_total",
			Help:      "Stored aggregates recomputed, by aggregate.",
		},
		[]string{"aggregate"},
	)
	alerts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindred",
			Name:      "alerts_total",
			Help:      "Moderator alerts, by result.",
		},
		[]string{"result"},
	)

	m := &Metrics{
		analyses:   register(reg, analyses),
		flags:      register(reg, flags),
		scores:     register(reg, scores),
		recomputes: register(reg, recomputes),
		alerts:     register(reg, alerts),
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveAnalysis counts one analysis of kind and every flag it raised.
func (m *Metrics) ObserveAnalysis(kind string, score int, flags []string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(kind).Inc()
	m.scores.WithLabelValues(kind).Observe(float64(score))
	for _, f := range flags {
		m.flags.WithLabelValues(f).Inc()
	}
}

// ObserveScore records a score produced by component.
func (m *Metrics) ObserveScore(component string, score int) {
	if m == nil {
		return
	}
	m.scores.WithLabelValues(component).Observe(float64(score))
}

// IncRecompute counts a recompute of a stored aggregate.
func (m *Metrics) IncRecompute(aggregate string) {
	if m == nil {
		return
	}
	m.recomputes.WithLabelValues(aggregate).Inc()
}

// IncAlert counts a moderator alert with its result (sent, throttled, failed).
func (m *Metrics) IncAlert(result string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(result).Inc()
}
