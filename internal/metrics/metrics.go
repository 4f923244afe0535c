// Package metrics содержит Prometheus-метрики приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы обработки вебхука.
const (
	OutcomeApplied          = "applied"
	OutcomeIgnored          = "ignored"
	OutcomeMissingCustomID  = "missing_custom_id"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformed        = "malformed"
	OutcomeStoreError       = "store_error"
)

// WebhookMetrics счётчики обработанных событий PayPal.
type WebhookMetrics struct {
	events *prometheus.CounterVec
}

// NewWebhookMetrics создаёт счётчики и регистрирует их в reg.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astraweather",
			Name:      "webhook_events_total",
			Help:      "PayPal webhook events by type and outcome.",
		}, []string{"event_type", "outcome"}),
	}
	reg.MustRegister(m.events)
	return m
}

// EventProcessed увеличивает счётчик для пары тип события / исход.
func (m *WebhookMetrics) EventProcessed(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}
