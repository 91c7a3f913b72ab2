package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signing-backend/internal/queue"
)

// QueueDispatcher hands notifications to the worker through the queue.
// Delivery happens later; Notify only fails when the enqueue fails.
type QueueDispatcher struct {
	Queue     queue.Client
	RequestID func(ctx context.Context) string
}

// Notify enqueues n.
func (d *QueueDispatcher) Notify(ctx context.Context, n Notification) error {
	if d.Queue == nil {
		return fmt.Errorf("notification queue not configured")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := queue.Message{
		Kind:         string(n.Type),
		Notification: payload,
		EnqueuedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:      queue.MessageVersion,
	}
	if d.RequestID != nil {
		msg.RequestID = d.RequestID(ctx)
	}
	return d.Queue.Send(ctx, msg)
}

// Decode extracts the notification carried by msg.
func Decode(msg queue.Message) (Notification, error) {
	var n Notification
	if len(msg.Notification) == 0 {
		return Notification{}, fmt.Errorf("%w: empty payload", ErrInvalidNotification)
	}
	if err := json.Unmarshal(msg.Notification, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	return n, nil
}

var _ Dispatcher = (*QueueDispatcher)(nil)
