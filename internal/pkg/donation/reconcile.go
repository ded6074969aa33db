package donation

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

const (
	msgStatusCheckFailed  = "Error checking payment status"
	msgSessionNotFound    = "Payment session not found"
	msgWebhookFailed      = "Webhook processing failed"
	msgStatusUpdateFailed = "Error updating payment status"
)

// StatusResult is the client view of a checkout session. Amount is in major
// currency units.
type StatusResult struct {
	Status        models.DonationStatus `json:"status"`
	PaymentStatus models.PaymentStatus  `json:"payment_status"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
}

// CheckStatus pulls the session state from the provider and reconciles it.
// A session already recorded as paid is answered from the store alone.
func (s *Service) CheckStatus(ctx context.Context, sessionID string) (*StatusResult, error) {
	tx, err := s.transactions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgSessionNotFound)
		}
		return nil, apperror.Persistence(msgStatusCheckFailed, err)
	}
	if tx.PaymentStatus == models.PaymentStatusPaid {
		return settledResult(tx), nil
	}

	st, err := s.provider.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		return nil, apperror.Upstream(msgStatusCheckFailed, err)
	}

	state, err := s.reconcile(ctx, tx, st)
	if err != nil {
		return nil, err
	}

	currency := st.Currency
	if currency == "" {
		currency = tx.Currency
	}
	return &StatusResult{
		Status:        state.Status,
		PaymentStatus: state.PaymentStatus,
		Amount:        payment.FromMinorUnits(st.AmountTotal),
		Currency:      currency,
	}, nil
}

// HandleWebhook verifies and applies a provider event. Events already
// processed successfully are acknowledged without being applied again.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return apperror.Authentication(msgWebhookFailed, err)
		}
		return apperror.Validation(msgWebhookFailed)
	}

	record, duplicate := s.recordEvent(ctx, evt)
	if duplicate {
		log.Infof("[Donation] webhook event %s already processed", evt.ID)
		return nil
	}

	err = s.applyEvent(ctx, evt)
	s.markEvent(ctx, record, err)
	return err
}

func (s *Service) applyEvent(ctx context.Context, evt *payment.WebhookEvent) error {
	if evt.Type != payment.EventCheckoutSessionCompleted {
		log.Debugf("[Donation] ignoring webhook event %s of type %s", evt.ID, evt.Type)
		return nil
	}
	if evt.SessionID == "" || evt.Session == nil {
		return apperror.Validation(msgWebhookFailed)
	}

	tx, err := s.transactions.GetBySessionID(ctx, evt.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Sessions opened outside this site share the account.
			log.Warnf("[Donation] webhook for unknown session %s", evt.SessionID)
			return nil
		}
		return apperror.Persistence(msgWebhookFailed, err)
	}
	if tx.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}

	_, err = s.reconcile(ctx, tx, evt.Session)
	return err
}

// reconcile applies a provider outcome to the transaction, its donation and
// the donor's running total. The conditional transaction write decides which
// caller performs the paid side effects.
func (s *Service) reconcile(ctx context.Context, tx *models.PaymentTransaction, st *payment.CheckoutStatus) (State, error) {
	current := State{Status: tx.Status, PaymentStatus: tx.PaymentStatus, CompletedAt: tx.CompletedAt}
	next, changed := Transition(current, OutcomeFrom(st), s.now())
	if !changed {
		return current, nil
	}

	update := models.PaymentTransactionUpdate{
		PaymentStatus: next.PaymentStatus,
		Status:        next.Status,
		CompletedAt:   next.CompletedAt,
	}
	if st.PaymentID != "" {
		update.PaymentID = &st.PaymentID
	}
	paid := next.PaymentStatus == models.PaymentStatusPaid

	// The donation is written first so a failure leaves the transaction
	// unpaid and the next pull or delivery retries the whole transition.
	if paid && tx.DonationID != nil {
		if err := s.donations.ApplyPaymentUpdate(ctx, *tx.DonationID, update); err != nil {
			return current, apperror.Persistence(msgStatusUpdateFailed, err)
		}
	}

	applied, err := s.transactions.ApplyUpdate(ctx, tx.SessionID, update)
	if err != nil {
		return current, apperror.Persistence(msgStatusUpdateFailed, err)
	}
	if !applied {
		// Another reconciler settled the session first.
		return State{Status: models.DonationStatusCompleted, PaymentStatus: models.PaymentStatusPaid}, nil
	}

	if !paid {
		log.Infof("[Donation] session %s moved to %s/%s", tx.SessionID, next.Status, next.PaymentStatus)
		return next, nil
	}

	log.Infof("[Donation] session %s paid (%s %s)", tx.SessionID, tx.Amount.StringFixed(2), tx.Currency)

	if tx.UserID != nil && *tx.UserID != "" && s.users != nil {
		if err := s.users.AddDonationTotal(ctx, *tx.UserID, tx.Amount); err != nil {
			log.Errorf("[Donation] failed to add %s to donation total of user %s: %v", tx.Amount.StringFixed(2), *tx.UserID, err)
		}
	}
	s.stats.Invalidate(ctx)

	return next, nil
}

func settledResult(tx *models.PaymentTransaction) *StatusResult {
	return &StatusResult{
		Status:        models.DonationStatusCompleted,
		PaymentStatus: models.PaymentStatusPaid,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	}
}

// recordEvent stores the delivery in the webhook log. duplicate is true only
// when the same event was already processed without error. A failing event
// log does not block reconciliation.
func (s *Service) recordEvent(ctx context.Context, evt *payment.WebhookEvent) (*models.PaymentWebhookEvent, bool) {
	if s.events == nil || evt.ID == "" {
		return nil, false
	}
	created, stored, err := s.events.CreateIfNotExists(ctx, &models.PaymentWebhookEvent{
		Provider:        s.provider.Name(),
		ProviderEventID: evt.ID,
		EventType:       evt.Type,
		PayloadJSON:     string(evt.Payload),
		SignatureValid:  true,
	})
	if err != nil {
		log.Errorf("[Donation] failed to record webhook event %s: %v", evt.ID, err)
		return nil, false
	}
	if !created && stored != nil && stored.IsProcessed() {
		return stored, true
	}
	return stored, false
}

func (s *Service) markEvent(ctx context.Context, record *models.PaymentWebhookEvent, procErr error) {
	if s.events == nil || record == nil {
		return
	}
	msg := ""
	if procErr != nil {
		msg = procErr.Error()
	}
	if err := s.events.MarkProcessed(ctx, record.ID, msg); err != nil {
		log.Errorf("[Donation] failed to mark webhook event %d processed: %v", record.ID, err)
	}
}
