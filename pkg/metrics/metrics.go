package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions tracks currently registered connection sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairlink_active_sessions",
		Help: "Number of live websocket sessions registered in the hub.",
	})
	// MessagesPersisted counts messages appended to the conversation log.
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairlink_messages_persisted_total",
		Help: "Messages appended to the conversation store.",
	})
	// EventsBroadcast counts events handed to the hub, by kind.
	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairlink_events_broadcast_total",
		Help: "Events broadcast to conversation rooms.",
	}, []string{"kind"})
	// DeliveryFailures counts per-member delivery errors during broadcast.
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairlink_delivery_failures_total",
		Help: "Per-member delivery failures during broadcast.",
	})
	// ReminderAlerts counts reminder alerts emitted by the poller.
	ReminderAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairlink_reminder_alerts_total",
		Help: "Reminder alerts emitted to conversation rooms.",
	})
	// AuthRejections counts failed connection handshakes, by reason.
	AuthRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairlink_auth_rejections_total",
		Help: "Websocket handshakes rejected during authentication.",
	}, []string{"reason"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
