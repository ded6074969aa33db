package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentTransaction tracks one provider checkout session. It references the
// donation it funds by id and is keyed by the provider session id.
type PaymentTransaction struct {
	ID            string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID     string            `gorm:"type:varchar(255);not null;uniqueIndex" json:"session_id"`
	PaymentID     *string           `gorm:"type:varchar(255)" json:"payment_id"`
	UserID        *string           `gorm:"type:varchar(36);index" json:"user_id"`
	Email         *string           `gorm:"type:varchar(200)" json:"email"`
	Amount        decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string            `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	PaymentStatus PaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status        DonationStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DonationID    *string           `gorm:"type:varchar(36);index" json:"donation_id"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt   *time.Time        `gorm:"type:timestamp;default:null" json:"completed_at"`
}

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PaymentTransactionUpdate is the field set the reconciler writes in one go.
type PaymentTransactionUpdate struct {
	PaymentStatus PaymentStatus
	Status        DonationStatus
	PaymentID     *string
	CompletedAt   *time.Time
}
