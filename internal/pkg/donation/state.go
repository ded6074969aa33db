package donation

import (
	"time"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

// State is the persisted payment state shared by a donation and its
// transaction.
type State struct {
	Status        models.DonationStatus
	PaymentStatus models.PaymentStatus
	CompletedAt   *time.Time
}

// Outcome is what the provider reports for a checkout session.
type Outcome struct {
	SessionStatus string
	PaymentStatus string
}

func OutcomeFrom(st *payment.CheckoutStatus) Outcome {
	return Outcome{SessionStatus: st.Status, PaymentStatus: st.PaymentStatus}
}

// Paid reports whether the provider considers the session settled.
func (o Outcome) Paid() bool {
	return o.PaymentStatus == payment.PaymentStatusPaid ||
		o.PaymentStatus == payment.PaymentStatusNoPaymentRequired
}

// Transition computes the next state for an outcome observed at now. The
// second result is false when the state does not change.
//
//	completed                      -> absorbing
//	paid / no_payment_required     -> paid, completed, completed_at=now
//	session expired                -> failed, expired
//	session open, complete+unpaid  -> unchanged (still settling)
//	anything else                  -> payment failed, status unchanged
func Transition(current State, outcome Outcome, now time.Time) (State, bool) {
	if current.Status == models.DonationStatusCompleted || current.PaymentStatus == models.PaymentStatusPaid {
		return current, false
	}

	next := current
	switch {
	case outcome.Paid():
		completedAt := now
		next = State{
			Status:        models.DonationStatusCompleted,
			PaymentStatus: models.PaymentStatusPaid,
			CompletedAt:   &completedAt,
		}
	case outcome.SessionStatus == payment.SessionStatusExpired:
		next.Status = models.DonationStatusExpired
		next.PaymentStatus = models.PaymentStatusFailed
	case outcome.SessionStatus == payment.SessionStatusOpen,
		outcome.SessionStatus == payment.SessionStatusComplete && outcome.PaymentStatus == payment.PaymentStatusUnpaid:
		return current, false
	default:
		next.PaymentStatus = models.PaymentStatusFailed
	}

	changed := next.Status != current.Status || next.PaymentStatus != current.PaymentStatus
	return next, changed
}
