// Package notification publishes billing events to interested collaborators.
// Delivery is fire-and-forget: a failed notification is logged and never
// affects the financial transaction that produced it.
package notification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a billing event.
type EventType string

const (
	InvoiceGenerated  EventType = "invoice.generated"
	InvoiceCancelled  EventType = "invoice.cancelled"
	PaymentRecorded   EventType = "payment.recorded"
	DiscountApplied   EventType = "discount.applied"
	LedgerReversed    EventType = "ledger.reversed"
	StudentCheckedOut EventType = "student.checked_out"
	BookingApproved   EventType = "booking.approved"
)

// Event is the payload published after a billing mutation commits.
type Event struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	StudentID   string          `json:"studentID"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID string          `json:"referenceID,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        map[string]any  `json:"data,omitempty"`
}

// Notifier delivers events. Implementations must not block the caller on a slow
// or unavailable broker.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Closer is implemented by notifiers that hold network resources.
type Closer interface {
	Close() error
}
