package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

func TestSweepPendingSettlesStaleSessions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	paid := checkout(t, env, "support", &Identity{ID: "user-1", Email: "ruth@example.org"})
	expired := checkout(t, env, "partnership", nil)
	open := checkout(t, env, "blessing", nil)

	env.provider.markPaid(paid.SessionID)
	env.provider.setStatus(expired.SessionID, payment.SessionStatusExpired, payment.PaymentStatusUnpaid)

	env.svc.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	res, err := env.svc.SweepPending(ctx, 15*time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 3, Paid: 1, Failed: 1}, res)

	tx, err := env.transactions.GetBySessionID(ctx, paid.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, tx.PaymentStatus)
	assert.True(t, env.users.total("user-1").Equal(decimal.NewFromInt(50)))

	tx, err = env.transactions.GetBySessionID(ctx, expired.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusExpired, tx.Status)

	tx, err = env.transactions.GetBySessionID(ctx, open.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, tx.PaymentStatus)

	// Settled sessions leave the pending set.
	res, err = env.svc.SweepPending(ctx, 15*time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
}

func TestSweepPendingSkipsRecentSessions(t *testing.T) {
	env := newTestEnv()
	res := checkout(t, env, "support", nil)
	env.provider.markPaid(res.SessionID)

	out, err := env.svc.SweepPending(context.Background(), 15*time.Minute, 10)
	require.NoError(t, err)
	assert.Zero(t, out.Checked)
	assert.Zero(t, env.provider.calls())
}

func TestSweepPendingContinuesAfterProviderError(t *testing.T) {
	env := newTestEnv()
	checkout(t, env, "support", nil)
	checkout(t, env, "partnership", nil)
	env.provider.statusErr = errors.New("stripe unavailable")

	env.svc.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	res, err := env.svc.SweepPending(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, 2, res.Errors)
}
