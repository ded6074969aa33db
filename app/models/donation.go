package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// Amounts go to clients as JSON numbers (50.0), not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const DefaultCurrency = "usd"

type DonationType string

const (
	DonationTypeOneTime DonationType = "one_time"
	DonationTypeMonthly DonationType = "monthly"
	DonationTypeYearly  DonationType = "yearly"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusCancelled DonationStatus = "cancelled"
	DonationStatusExpired   DonationStatus = "expired"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Donation is the business record of an intended or completed gift.
// PaymentStatus paid implies Status completed implies CompletedAt set.
type Donation struct {
	ID               string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           *string           `gorm:"type:varchar(36);index" json:"user_id"`
	Email            *string           `gorm:"type:varchar(200)" json:"email"`
	DonorName        *string           `gorm:"type:varchar(150)" json:"donor_name"`
	Amount           decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string            `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	DonationType     DonationType      `gorm:"type:varchar(20);not null;default:'one_time'" json:"donation_type"`
	Message          *string           `gorm:"type:text" json:"message"`
	Anonymous        bool              `gorm:"default:false" json:"anonymous"`
	PaymentSessionID *string           `gorm:"type:varchar(255);index" json:"payment_session_id"`
	PaymentStatus    PaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status           DonationStatus    `gorm:"type:varchar(20);not null;default:'pending';index:idx_donations_status_completed,priority:1" json:"status"`
	CreatedAt        time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt      *time.Time        `gorm:"type:timestamp;default:null;index:idx_donations_status_completed,priority:2" json:"completed_at"`
	Metadata         datatypes.JSONMap `gorm:"type:json" json:"metadata"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
