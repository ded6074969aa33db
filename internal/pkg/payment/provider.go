// Package payment is the boundary to the hosted checkout provider.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// EventCheckoutSessionCompleted is the only webhook event type that
	// triggers reconciliation.
	EventCheckoutSessionCompleted = "checkout.session.completed"

	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutSessionRequest describes a one-line hosted checkout for a single amount.
type CheckoutSessionRequest struct {
	Amount        decimal.Decimal
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutStatus is the provider's view of a session. AmountTotal is in minor
// units.
type CheckoutStatus struct {
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	PaymentID     string
	Metadata      map[string]string
}

// WebhookEvent is a verified provider event reduced to what reconciliation needs.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
	// Session is the checkout session snapshot carried by checkout.session.*
	// events, nil for other types.
	Session *CheckoutStatus
	Payload []byte
}

// Provider is implemented by hosted checkout backends.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error)
	// ParseWebhook verifies the signature header against the raw body and
	// decodes the event. It returns ErrInvalidSignature on mismatch.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	Name() string
}

// ToMinorUnits converts a major-unit amount (dollars) to minor units (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts minor units back to a major-unit amount.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
