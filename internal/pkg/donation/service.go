// Package donation implements the donation checkout lifecycle: package
// resolution, checkout session creation, payment reconciliation and the
// aggregate statistics over completed donations.
package donation

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

const (
	SourceChurchWebsite = "church_website"

	WebhookPath = "/api/webhook/stripe"
	SuccessPath = "/dons/succes"
	CancelPath  = "/dons"
)

// UserTotals is the slice of the user store the reconciler needs.
type UserTotals interface {
	AddDonationTotal(ctx context.Context, id string, amount decimal.Decimal) error
}

// Identity is the optional authenticated caller of a checkout.
type Identity struct {
	ID    string
	Email string
}

// Dependencies groups the collaborators of a Service.
type Dependencies struct {
	Catalog      *Catalog
	Donations    repository.DonationRepository
	Transactions repository.PaymentTransactionRepository
	Users        UserTotals
	Events       repository.WebhookEventRepository
	Provider     payment.Provider
	Stats        StatsCache
}

type Service struct {
	catalog      *Catalog
	donations    repository.DonationRepository
	transactions repository.PaymentTransactionRepository
	users        UserTotals
	events       repository.WebhookEventRepository
	provider     payment.Provider
	stats        StatsCache
	validate     *validator.Validate
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	stats := deps.Stats
	if stats == nil {
		stats = NoopStatsCache{}
	}
	return &Service{
		catalog:      catalog,
		donations:    deps.Donations,
		transactions: deps.Transactions,
		users:        deps.Users,
		events:       deps.Events,
		provider:     deps.Provider,
		stats:        stats,
		validate:     validator.New(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Packages lists the donation tiers in catalog order.
func (s *Service) Packages() []Package {
	return s.catalog.List()
}
