package notifications

import (
	"context"

	"signing-backend/internal/shared/telemetry"
)

// LogDispatcher writes notifications to the log instead of sending them.
type LogDispatcher struct{}

// Notify logs n.
func (LogDispatcher) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := map[string]any{
		"type":            string(n.Type),
		"recipient_email": n.RecipientEmail,
		"project_id":      n.ProjectID,
		"document_id":     n.DocumentID,
		"item_number":     n.ItemNumber,
	}
	if n.SigningURL != "" {
		fields["signing_url"] = n.SigningURL
	}
	telemetry.Info("notification.logged", fields)
	return nil
}

var _ Dispatcher = LogDispatcher{}
