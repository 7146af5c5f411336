// Package metrics expone los contadores Prometheus del servicio de chat.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal cuenta los mensajes agregados al log, por rol.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages appended to the conversation log",
		},
		[]string{"role"},
	)

	// NormalizedResponses cuenta las respuestas del webhook por tipo resultante.
	NormalizedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_normalized_responses_total",
			Help: "Webhook responses normalized, by resulting message kind",
		},
		[]string{"kind"},
	)

	// RateLimitRejections cuenta los envíos rechazados por el limiter.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_rejections_total",
			Help: "Messages rejected by the sliding window rate limiter",
		},
	)

	// WebhookFailures cuenta los fallos del webhook por clase.
	WebhookFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_webhook_failures_total",
			Help: "Webhook send failures, by failure class",
		},
		[]string{"class"},
	)

	// WebhookDuration mide la latencia de los envíos al webhook.
	WebhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_webhook_duration_seconds",
			Help:    "Webhook round trip duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// WSConnectionsActive cuenta las conexiones WebSocket abiertas.
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections_active",
			Help: "Number of active chat WebSocket connections",
		},
	)
)
