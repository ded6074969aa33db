package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository instance
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) SetPaymentSessionID(ctx context.Context, id, sessionID string) error {
	return r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ?", id).
		Update("payment_session_id", sessionID).Error
}

// ApplyPaymentUpdate copies the reconciled payment state onto the donation.
// A completed donation is never moved back.
func (r *donationRepository) ApplyPaymentUpdate(ctx context.Context, id string, update models.PaymentTransactionUpdate) error {
	updates := map[string]interface{}{
		"payment_status": update.PaymentStatus,
		"status":         update.Status,
		"updated_at":     time.Now(),
	}
	if update.CompletedAt != nil {
		updates["completed_at"] = *update.CompletedAt
	}
	return r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status <> ?", id, models.DonationStatusCompleted).
		Updates(updates).Error
}

func (r *donationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Donation{}).Error
}

// ListByUser returns the user's donations, newest first
func (r *donationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

func (r *donationRepository) SumCompleted(ctx context.Context, since *time.Time) (models.AmountCount, error) {
	var result models.AmountCount
	q := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("status = ?", models.DonationStatusCompleted)
	if since != nil {
		q = q.Where("completed_at >= ?", *since)
	}
	err := q.Scan(&result).Error
	return result, err
}
