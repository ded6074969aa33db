package donation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

type fakeDonations struct {
	mu      sync.Mutex
	rows    map[string]models.Donation
	writes  int
	nextID  int
	failSum bool
}

func newFakeDonations() *fakeDonations {
	return &fakeDonations{rows: map[string]models.Donation{}}
}

func (f *fakeDonations) Create(_ context.Context, d *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == "" {
		f.nextID++
		d.ID = fmt.Sprintf("don_%d", f.nextID)
	}
	d.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	f.rows[d.ID] = *d
	f.writes++
	return nil
}

func (f *fakeDonations) GetByID(_ context.Context, id string) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (f *fakeDonations) SetPaymentSessionID(_ context.Context, id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.PaymentSessionID = &sessionID
	f.rows[id] = d
	f.writes++
	return nil
}

func (f *fakeDonations) ApplyPaymentUpdate(_ context.Context, id string, u models.PaymentTransactionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok || d.Status == models.DonationStatusCompleted {
		return nil
	}
	d.PaymentStatus = u.PaymentStatus
	d.Status = u.Status
	if u.CompletedAt != nil {
		d.CompletedAt = u.CompletedAt
	}
	f.rows[id] = d
	f.writes++
	return nil
}

func (f *fakeDonations) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	f.writes++
	return nil
}

func (f *fakeDonations) ListByUser(_ context.Context, userID string, limit int) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Donation
	for _, d := range f.rows {
		if d.UserID != nil && *d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDonations) SumCompleted(_ context.Context, since *time.Time) (models.AmountCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSum {
		return models.AmountCount{}, errors.New("connection refused")
	}
	res := models.AmountCount{Total: decimal.Zero}
	for _, d := range f.rows {
		if d.Status != models.DonationStatusCompleted {
			continue
		}
		if since != nil && (d.CompletedAt == nil || d.CompletedAt.Before(*since)) {
			continue
		}
		res.Total = res.Total.Add(d.Amount)
		res.Count++
	}
	return res, nil
}

func (f *fakeDonations) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type fakeTransactions struct {
	mu         sync.Mutex
	rows       map[string]models.PaymentTransaction
	writes     int
	failCreate bool
}

func newFakeTransactions() *fakeTransactions {
	return &fakeTransactions{rows: map[string]models.PaymentTransaction{}}
}

func (f *fakeTransactions) Create(_ context.Context, tx *models.PaymentTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("duplicate entry")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	f.rows[tx.SessionID] = *tx
	f.writes++
	return nil
}

func (f *fakeTransactions) GetBySessionID(_ context.Context, sessionID string) (*models.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.rows[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &tx, nil
}

func (f *fakeTransactions) ApplyUpdate(_ context.Context, sessionID string, u models.PaymentTransactionUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.rows[sessionID]
	if !ok || tx.PaymentStatus == models.PaymentStatusPaid {
		return false, nil
	}
	tx.PaymentStatus = u.PaymentStatus
	tx.Status = u.Status
	if u.PaymentID != nil {
		tx.PaymentID = u.PaymentID
	}
	if u.CompletedAt != nil {
		tx.CompletedAt = u.CompletedAt
	}
	f.rows[sessionID] = tx
	f.writes++
	return true, nil
}

func (f *fakeTransactions) ListPending(_ context.Context, createdBefore time.Time, limit int) ([]models.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentTransaction
	for _, tx := range f.rows {
		if tx.Status != models.DonationStatusPending || !tx.CreatedAt.Before(createdBefore) {
			continue
		}
		if tx.PaymentStatus == models.PaymentStatusPending || tx.PaymentStatus == models.PaymentStatusUnpaid {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTransactions) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type fakeUsers struct {
	mu     sync.Mutex
	totals map[string]decimal.Decimal
	fail   bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{totals: map[string]decimal.Decimal{}}
}

func (f *fakeUsers) AddDonationTotal(_ context.Context, id string, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("lock wait timeout")
	}
	f.totals[id] = f.totals[id].Add(amount)
	return nil
}

func (f *fakeUsers) total(id string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals[id]
}

type fakeEvents struct {
	mu     sync.Mutex
	rows   map[string]*models.PaymentWebhookEvent
	nextID uint
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{rows: map[string]*models.PaymentWebhookEvent{}}
}

func (f *fakeEvents) CreateIfNotExists(_ context.Context, e *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := e.Provider + ":" + e.ProviderEventID
	if existing, ok := f.rows[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.rows[key] = &cp
	return true, e, nil
}

func (f *fakeEvents) MarkProcessed(_ context.Context, id uint, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
		}
	}
	return nil
}

func (f *fakeEvents) get(eventID string) *models.PaymentWebhookEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows["stripe:"+eventID]
}

type fakeProvider struct {
	mu          sync.Mutex
	createErr   error
	statusErr   error
	status      map[string]*payment.CheckoutStatus
	requests    []payment.CheckoutSessionRequest
	statusCalls int
	events      map[string]*payment.WebhookEvent
	sessionSeq  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		status: map[string]*payment.CheckoutStatus{},
		events: map[string]*payment.WebhookEvent{},
	}
}

func (p *fakeProvider) Name() string { return models.PaymentProviderStripe }

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutSessionRequest) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.sessionSeq++
	id := fmt.Sprintf("cs_test_%d", p.sessionSeq)
	p.status[id] = &payment.CheckoutStatus{
		Status:        payment.SessionStatusOpen,
		PaymentStatus: payment.PaymentStatusUnpaid,
		AmountTotal:   payment.ToMinorUnits(req.Amount),
		Currency:      req.Currency,
	}
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (p *fakeProvider) GetCheckoutStatus(_ context.Context, sessionID string) (*payment.CheckoutStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	st, ok := p.status[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	cp := *st
	return &cp, nil
}

// ParseWebhook treats the payload as an event id and the signature "valid"
// as the only accepted one.
func (p *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	evt, ok := p.events[string(payload)]
	if !ok {
		return nil, errors.New("malformed event")
	}
	cp := *evt
	return &cp, nil
}

func (p *fakeProvider) markPaid(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.status[sessionID]
	st.Status = payment.SessionStatusComplete
	st.PaymentStatus = payment.PaymentStatusPaid
	st.PaymentID = "pi_" + sessionID
}

func (p *fakeProvider) setStatus(sessionID, sessionStatus, paymentStatus string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.status[sessionID]
	st.Status = sessionStatus
	st.PaymentStatus = paymentStatus
}

func (p *fakeProvider) addEvent(id, eventType, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var snapshot *payment.CheckoutStatus
	if st, ok := p.status[sessionID]; ok {
		cp := *st
		snapshot = &cp
	}
	p.events[id] = &payment.WebhookEvent{ID: id, Type: eventType, SessionID: sessionID, Session: snapshot, Payload: []byte(id)}
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusCalls
}

type fakeStatsCache struct {
	mu          sync.Mutex
	value       *models.DonationStats
	invalidated int
}

func (c *fakeStatsCache) Get(context.Context) (*models.DonationStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		return nil, false
	}
	cp := *c.value
	return &cp, true
}

func (c *fakeStatsCache) Set(_ context.Context, s *models.DonationStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.value = &cp
}

func (c *fakeStatsCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.invalidated++
}

type testEnv struct {
	svc          *Service
	donations    *fakeDonations
	transactions *fakeTransactions
	users        *fakeUsers
	events       *fakeEvents
	provider     *fakeProvider
	stats        *fakeStatsCache
}

func newTestEnv() *testEnv {
	env := &testEnv{
		donations:    newFakeDonations(),
		transactions: newFakeTransactions(),
		users:        newFakeUsers(),
		events:       newFakeEvents(),
		provider:     newFakeProvider(),
		stats:        &fakeStatsCache{},
	}
	env.svc = NewService(Dependencies{
		Catalog:      DefaultCatalog(),
		Donations:    env.donations,
		Transactions: env.transactions,
		Users:        env.users,
		Events:       env.events,
		Provider:     env.provider,
		Stats:        env.stats,
	})
	return env
}
