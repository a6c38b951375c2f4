package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/grafamedia/keuangan-bot/internal/registration"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total number of inbound messages labeled by command and status",
		},
		[]string{"command", "status"},
	)
	messageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_duration_seconds",
			Help:    "Duration of message handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	registrationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_transitions_total",
			Help: "Total number of registration state transitions",
		},
		[]string{"from", "to"},
	)
	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of ledger store failures by operation",
		},
		[]string{"op"},
	)
	outboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_messages_total",
			Help: "Total number of outbound messages by payload type",
		},
		[]string{"type"},
	)
	chartRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_requests_total",
			Help: "Total number of chart render requests by status",
		},
		[]string{"status"},
	)
)

func init() {
	registration.RegisterTransitionRecorder(RecordRegistrationTransition)
}

// RecordMessage increments the message counter and records handling duration.
func RecordMessage(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	messagesTotal.WithLabelValues(command, status).Inc()
	messageDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordRegistrationTransition counts a registration state change.
func RecordRegistrationTransition(from, to string) {
	registrationTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordStoreError counts a ledger store failure for the given operation.
func RecordStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}

// RecordOutbound counts one outbound message of the given payload type.
func RecordOutbound(payloadType string) {
	outboundMessagesTotal.WithLabelValues(payloadType).Inc()
}

// RecordChartRequest counts one chart render attempt.
func RecordChartRequest(status string) {
	chartRequestsTotal.WithLabelValues(status).Inc()
}
