package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BotMetrics records how Telegram updates are handled.
type BotMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewBotMetrics registers the bot update metrics on the provided registerer.
func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	if reg == nil {
		return &BotMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_update_duration_seconds",
		Help:    "Time spent handling a Telegram update.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_update_success_total",
		Help: "Telegram updates handled without error.",
	}, []string{"command"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_update_failure_total",
		Help: "Telegram updates whose handler returned an error.",
	}, []string{"command"})
	reg.MustRegister(duration, success, failure)
	return &BotMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one handled update.
func (b *BotMetrics) Observe(command string, duration time.Duration, err error) {
	if b == nil || b.duration == nil {
		return
	}
	command = normalizeLabel(command)
	b.duration.WithLabelValues(command).Observe(duration.Seconds())
	if err != nil {
		b.failure.WithLabelValues(command).Inc()
		return
	}
	b.success.WithLabelValues(command).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
