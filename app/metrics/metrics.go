package metrics

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

var (
	NotificationsReceived = metrics.GetOrCreateCounter(`adyen_notifications_total{result="received"}`)
	NotificationsFailed   = metrics.GetOrCreateCounter(`adyen_notifications_total{result="failed"}`)

	ReconciliationExecuted = metrics.GetOrCreateCounter(`adyen_reconciliation_tasks_total{result="executed"}`)
	ReconciliationFailed   = metrics.GetOrCreateCounter(`adyen_reconciliation_tasks_total{result="failed"}`)

	AuthorizeCalls      = metrics.GetOrCreateCounter(`adyen_gateway_calls_total{call="authorise"}`)
	AuthorizeCallErrors = metrics.GetOrCreateCounter(`adyen_gateway_calls_total{call="authorise_error"}`)
)

// WritePrometheus renders all registered metrics in Prometheus text format.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
