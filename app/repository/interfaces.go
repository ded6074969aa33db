package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// UpdateProfile writes the self-service profile columns only. Role, status,
	// credentials and donation_total are never touched.
	UpdateProfile(user *models.User) error
	UpdateLastLogin(id string, at time.Time) error
	// AddDonationTotal atomically increments the user's running donation total.
	AddDonationTotal(ctx context.Context, id string, amount decimal.Decimal) error
}

// DonationRepository defines the persistence operations of the donation ledger
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id string) (*models.Donation, error)
	SetPaymentSessionID(ctx context.Context, id, sessionID string) error
	ApplyPaymentUpdate(ctx context.Context, id string, update models.PaymentTransactionUpdate) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Donation, error)
	// SumCompleted returns the sum and count of completed donations, optionally
	// restricted to completed_at >= since.
	SumCompleted(ctx context.Context, since *time.Time) (models.AmountCount, error)
}

// PaymentTransactionRepository defines the persistence operations of the
// checkout session tracker
type PaymentTransactionRepository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	// ApplyUpdate writes the update unless the transaction is already paid and
	// reports whether a row changed.
	ApplyUpdate(ctx context.Context, sessionID string, update models.PaymentTransactionUpdate) (bool, error)
	// ListPending returns unsettled transactions created before createdBefore,
	// oldest first.
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]models.PaymentTransaction, error)
}

// WebhookEventRepository records provider webhook deliveries for deduplication
type WebhookEventRepository interface {
	CreateIfNotExists(ctx context.Context, event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}

// ContactRepository defines the interface for contact form messages
type ContactRepository interface {
	Create(message *models.ContactMessage) error
	ListRecent(limit int) ([]models.ContactMessage, error)
}

// NewsletterRepository defines the interface for newsletter subscriptions
type NewsletterRepository interface {
	Create(subscriber *models.NewsletterSubscriber) error
	EmailExists(email string) (bool, error)
	ListActive(limit int) ([]models.NewsletterSubscriber, error)
}

// EventRepository defines the interface for church events
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id string) (*models.Event, error)
	ListUpcoming(limit int) ([]models.Event, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User               UserRepository
	Donation           DonationRepository
	PaymentTransaction PaymentTransactionRepository
	WebhookEvent       WebhookEventRepository
	Contact            ContactRepository
	Newsletter         NewsletterRepository
	Event              EventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:               NewUserRepository(db),
		Donation:           NewDonationRepository(db),
		PaymentTransaction: NewPaymentTransactionRepository(db),
		WebhookEvent:       NewWebhookEventRepository(db),
		Contact:            NewContactRepository(db),
		Newsletter:         NewNewsletterRepository(db),
		Event:              NewEventRepository(db),
	}
}
