package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"signing-backend/internal/notifications"
	"signing-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrUnsupported indicates a message this worker cannot deliver: an unknown
// schema version or a notification that fails validation.
type ErrUnsupported struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrUnsupported) Error() string { return "unsupported message: " + e.Reason }

// ErrDeliver indicates the notification was well formed but not delivered.
type ErrDeliver struct {
	Kind      string
	RequestID string
}

func (e ErrDeliver) Error() string { return "deliver " + e.Kind + " notification" }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, notifications.Notification, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, notifications.Notification{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, notifications.Notification{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if msg.Version != queue.MessageVersion {
		return msg, notifications.Notification{}, meta, ErrUnsupported{
			Meta:      meta,
			RequestID: msg.RequestID,
			Reason:    fmt.Sprintf("version %d", msg.Version),
		}
	}

	n, err := notifications.Decode(msg)
	if err == nil {
		err = n.Validate()
	}
	if err != nil {
		return msg, notifications.Notification{}, meta, ErrUnsupported{Meta: meta, RequestID: msg.RequestID, Reason: err.Error()}
	}
	return msg, n, meta, nil
}

// HandleMessage parses a message payload and delivers its notification
// through d, which must send directly rather than enqueue again.
func HandleMessage(ctx context.Context, d notifications.Dispatcher, body string) error {
	if d == nil {
		return errors.New("notification delivery not configured")
	}

	msg, n, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	if !notifications.Deliver(ctx, d, n) {
		return ErrDeliver{Kind: string(n.Type), RequestID: msg.RequestID}
	}
	return nil
}
