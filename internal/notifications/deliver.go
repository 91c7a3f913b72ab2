package notifications

import (
	"context"
	"time"

	"signing-backend/internal/shared/metrics"
	"signing-backend/internal/shared/telemetry"
)

// Deliver sends n through d and reports whether it went out. Failures are
// logged and counted but never returned: a signature or request is never
// rolled back because an email could not be sent.
func Deliver(ctx context.Context, d Dispatcher, n Notification) bool {
	fields := map[string]any{
		"type":        string(n.Type),
		"document_id": n.DocumentID,
		"project_id":  n.ProjectID,
	}
	if d == nil {
		telemetry.Warn("notification.skipped", fields)
		return false
	}
	if err := n.Validate(); err != nil {
		fields["error"] = err
		telemetry.Error("notification.invalid", fields)
		metrics.IncNotificationsFailed()
		return false
	}

	// Queued notices are counted as sent by the worker that delivers them.
	_, queued := d.(*QueueDispatcher)

	start := time.Now()
	err := d.Notify(ctx, n)
	if !queued {
		metrics.ObserveNotificationDurationMs(float64(time.Since(start).Milliseconds()))
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("notification.failed", fields)
		metrics.IncNotificationsFailed()
		return false
	}
	if queued {
		metrics.IncNotificationsEnqueued()
	} else {
		metrics.IncNotificationsSent()
	}
	return true
}
