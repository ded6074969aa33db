package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

type paymentTransactionRepository struct {
	db *gorm.DB
}

// NewPaymentTransactionRepository creates a new payment transaction repository instance
func NewPaymentTransactionRepository(db *gorm.DB) PaymentTransactionRepository {
	return &paymentTransactionRepository{db: db}
}

func (r *paymentTransactionRepository) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *paymentTransactionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// ApplyUpdate is a conditional write: the paid state is never overwritten, so
// two concurrent reconcilers cannot both observe a change to paid.
func (r *paymentTransactionRepository) ApplyUpdate(ctx context.Context, sessionID string, update models.PaymentTransactionUpdate) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": update.PaymentStatus,
		"status":         update.Status,
		"updated_at":     time.Now(),
	}
	if update.PaymentID != nil {
		updates["payment_id"] = *update.PaymentID
	}
	if update.CompletedAt != nil {
		updates["completed_at"] = *update.CompletedAt
	}

	res := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("session_id = ? AND payment_status <> ?", sessionID, models.PaymentStatusPaid).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentTransactionRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status IN ? AND created_at < ?",
			models.DonationStatusPending,
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusUnpaid},
			createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
