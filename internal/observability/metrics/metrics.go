package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the booking chat pipeline.
type ChatMetrics struct {
	turnsTotal     *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	conflictsTotal prometheus.Counter
	guardOverrides prometheus.Counter
	turnLatency    prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barber",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Conversation turns processed, by gate state",
		}, []string{"state"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barber",
			Subsystem: "chat",
			Name:      "bookings_total",
			Help:      "Commit attempts, by outcome",
		}, []string{"outcome"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barber",
			Subsystem: "chat",
			Name:      "slot_conflicts_total",
			Help:      "Availability checks that hit an occupied slot",
		}),
		guardOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barber",
			Subsystem: "chat",
			Name:      "guard_overrides_total",
			Help:      "Generated replies overridden for claiming success early",
		}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "barber",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.conflictsTotal, m.guardOverrides, m.turnLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(state string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state).Inc()
	m.turnLatency.Observe(seconds)
}

func (m *ChatMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

func (m *ChatMetrics) ObserveGuardOverride() {
	if m == nil {
		return
	}
	m.guardOverrides.Inc()
}
