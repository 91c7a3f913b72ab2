package notifications

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Kind names the email template the delivery side renders.
type Kind string

const (
	KindChangeOrderFullySigned    Kind = "change_order_fully_signed"
	KindPayApplicationFullySigned Kind = "pay_application_fully_signed"
	KindSignatureRequested        Kind = "signature_requested"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindChangeOrderFullySigned, KindPayApplicationFullySigned, KindSignatureRequested:
		return true
	default:
		return false
	}
}

// Notification is the payload handed to the outbound email function.
type Notification struct {
	Type           Kind       `json:"type"`
	RecipientEmail string     `json:"recipientEmail"`
	RecipientName  string     `json:"recipientName,omitempty"`
	ProjectName    string     `json:"projectName"`
	ItemTitle      string     `json:"itemTitle"`
	ItemNumber     string     `json:"itemNumber"`
	Amount         string     `json:"amount,omitempty"`
	ProjectID      string     `json:"projectId"`
	DocumentID     string     `json:"documentId"`
	SignerRole     string     `json:"signerRole,omitempty"`
	RequestedBy    string     `json:"requestedBy,omitempty"`
	SigningURL     string     `json:"signingUrl,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

var (
	ErrInvalidNotification = errors.New("invalid notification")
)

// Validate checks the fields every delivery path needs.
func (n Notification) Validate() error {
	if !n.Type.Valid() {
		return errors.Join(ErrInvalidNotification, errors.New("unknown type"))
	}
	if strings.TrimSpace(n.RecipientEmail) == "" {
		return errors.Join(ErrInvalidNotification, errors.New("recipient email is required"))
	}
	if n.Type == KindSignatureRequested && strings.TrimSpace(n.SigningURL) == "" {
		return errors.Join(ErrInvalidNotification, errors.New("signing url is required"))
	}
	return nil
}

// Dispatcher delivers a single notification. Implementations do not retry.
type Dispatcher interface {
	Notify(ctx context.Context, n Notification) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, n Notification) error

// Notify calls f.
func (f DispatcherFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
