package controllers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/donation"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateProfile(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Phone = u.Phone
	stored.Address = u.Address
	stored.BirthDate = u.BirthDate
	stored.Profession = u.Profession
	stored.Bio = u.Bio
	stored.MinistryInvolvement = u.MinistryInvolvement
	return nil
}

func (r *fakeUserRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Status = status
	}
}

func (r *fakeUserRepo) UpdateLastLogin(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r *fakeUserRepo) AddDonationTotal(_ context.Context, id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.DonationTotal = u.DonationTotal.Add(amount)
	}
	return nil
}

type fakeContactRepo struct {
	mu       sync.Mutex
	messages []models.ContactMessage
	fail     bool
}

func (r *fakeContactRepo) Create(m *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return gorm.ErrInvalidDB
	}
	m.ID = "msg-1"
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeContactRepo) ListRecent(limit int) ([]models.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages, nil
}

type fakeNewsletterRepo struct {
	subs []models.NewsletterSubscriber
}

func (r *fakeNewsletterRepo) Create(s *models.NewsletterSubscriber) error {
	s.ID = "sub-1"
	r.subs = append(r.subs, *s)
	return nil
}

func (r *fakeNewsletterRepo) EmailExists(email string) (bool, error) {
	for _, s := range r.subs {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNewsletterRepo) ListActive(limit int) ([]models.NewsletterSubscriber, error) {
	return r.subs, nil
}

type fakeEventRepo struct {
	events []models.Event
}

func (r *fakeEventRepo) Create(e *models.Event) error {
	e.ID = "evt-new"
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeEventRepo) GetByID(id string) (*models.Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEventRepo) ListUpcoming(limit int) ([]models.Event, error) {
	return r.events, nil
}

type fakeDonationService struct {
	lastReq     donation.CheckoutRequest
	lastDonor   *donation.Identity
	lastPayload []byte
	lastSig     string
	lastUserID  string
	lastLimit   int
	checkoutErr error
	statusErr   error
	webhookErr  error
}

func (s *fakeDonationService) Packages() []donation.Package {
	return donation.DefaultCatalog().List()
}

func (s *fakeDonationService) Checkout(_ context.Context, req donation.CheckoutRequest, donor *donation.Identity) (*donation.CheckoutResult, error) {
	s.lastReq = req
	s.lastDonor = donor
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &donation.CheckoutResult{URL: "https://checkout.stripe.com/c/pay/cs_1", SessionID: "cs_1", DonationID: "don-1"}, nil
}

func (s *fakeDonationService) CheckStatus(_ context.Context, sessionID string) (*donation.StatusResult, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	if sessionID != "cs_1" {
		return nil, apperror.NotFound("Payment session not found")
	}
	return &donation.StatusResult{
		Status:        models.DonationStatusCompleted,
		PaymentStatus: models.PaymentStatusPaid,
		Amount:        decimal.NewFromInt(50),
		Currency:      "usd",
	}, nil
}

func (s *fakeDonationService) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.lastPayload = payload
	s.lastSig = signature
	return s.webhookErr
}

func (s *fakeDonationService) Stats(context.Context) models.DonationStats {
	return models.DonationStats{TotalAmount: decimal.NewFromInt(375), TotalCount: 3, MonthlyAmount: decimal.NewFromInt(125), MonthlyCount: 2}
}

func (s *fakeDonationService) History(_ context.Context, userID string, limit int) ([]models.Donation, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	return []models.Donation{}, nil
}

type chanNotifier struct {
	ch chan models.ContactMessage
}

func (n *chanNotifier) NotifyContact(m *models.ContactMessage) error {
	n.ch <- *m
	return nil
}

type stubCaptcha struct {
	ok bool
}

func (s stubCaptcha) Verify(context.Context, string) (bool, error) {
	return s.ok, nil
}
