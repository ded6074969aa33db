package donation

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
)

const (
	DefaultSweepAge   = 15 * time.Minute
	DefaultSweepBatch = 50
)

// SweepResult counts what one sweep did.
type SweepResult struct {
	Checked int
	Paid    int
	Failed  int
	Errors  int
}

// SweepPending reconciles checkout sessions that are still unsettled after
// olderThan, for donors who never returned to the status page and whose
// webhook never arrived. Per-session errors are logged and skipped.
func (s *Service) SweepPending(ctx context.Context, olderThan time.Duration, limit int) (SweepResult, error) {
	var res SweepResult
	if olderThan <= 0 {
		olderThan = DefaultSweepAge
	}
	if limit <= 0 {
		limit = DefaultSweepBatch
	}

	pending, err := s.transactions.ListPending(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return res, apperror.Persistence("Error listing pending payments", err)
	}

	for i := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		tx := &pending[i]
		res.Checked++

		st, err := s.provider.GetCheckoutStatus(ctx, tx.SessionID)
		if err != nil {
			res.Errors++
			log.Warnf("[Donation] sweep: status of session %s: %v", tx.SessionID, err)
			continue
		}
		state, err := s.reconcile(ctx, tx, st)
		if err != nil {
			res.Errors++
			log.Warnf("[Donation] sweep: reconcile session %s: %v", tx.SessionID, err)
			continue
		}
		switch {
		case state.PaymentStatus == models.PaymentStatusPaid:
			res.Paid++
		case state.PaymentStatus == models.PaymentStatusFailed:
			res.Failed++
		}
	}

	if res.Checked > 0 {
		log.Infof("[Donation] sweep checked %d pending sessions: %d paid, %d failed, %d errors", res.Checked, res.Paid, res.Failed, res.Errors)
	}
	return res, nil
}
