package documents

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type distinguishes the kinds of documents that collect signatures.
type Type string

const (
	TypePayApplication Type = "pay_application"
	TypeChangeOrder    Type = "change_order"
)

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	switch t {
	case TypePayApplication, TypeChangeOrder:
		return true
	default:
		return false
	}
}

// Label is the human-readable name used in notifications.
func (t Type) Label() string {
	switch t {
	case TypePayApplication:
		return "Pay Application"
	case TypeChangeOrder:
		return "Change Order"
	default:
		return string(t)
	}
}

// Document is a pay application or change order awaiting signatures.
type Document struct {
	ID          string
	ProjectID   string
	Type        Type
	Number      string
	Title       string
	AmountCents *int64
	CreatedBy   string
	// FullySignedNotifiedAt is set once the completion notice has been sent.
	FullySignedNotifiedAt *time.Time
	CreatedAt             time.Time
}

// DisplayNumber renders the number the way the field team refers to it,
// e.g. "CO-5" or "Pay App #3".
func (d Document) DisplayNumber() string {
	switch d.Type {
	case TypeChangeOrder:
		return "CO-" + d.Number
	case TypePayApplication:
		return "Pay App #" + d.Number
	default:
		return d.Number
	}
}

// FormatAmount renders cents as US dollars, e.g. "$12,500.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}
