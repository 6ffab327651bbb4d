package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	AssignmentOutcomeAssigned    = "assigned"
	AssignmentOutcomeNoCandidate = "no_candidate"
	AssignmentOutcomeError       = "error"
)

// DeliveryMetrics tracks courier assignment and completion.
type DeliveryMetrics struct {
	assignments *prometheus.CounterVec
	minutes     prometheus.Histogram
}

func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_assignments_total",
		Help: "Delivery assignment attempts by outcome.",
	}, []string{"outcome"})
	minutes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "delivery_duration_minutes",
		Help:    "Minutes between assignment and completed delivery.",
		Buckets: []float64{10, 20, 30, 45, 60, 90, 120, 180},
	})
	reg.MustRegister(assignments, minutes)
	return &DeliveryMetrics{assignments: assignments, minutes: minutes}
}

func (d *DeliveryMetrics) IncAssignment(outcome string) {
	if d == nil || d.assignments == nil {
		return
	}
	d.assignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (d *DeliveryMetrics) ObserveDelivery(minutes int) {
	if d == nil || d.minutes == nil {
		return
	}
	d.minutes.Observe(float64(minutes))
}
