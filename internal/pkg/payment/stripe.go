package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yaguita/iglesia-backend/app/models"
)

const defaultTimeout = 20 * time.Second

// StripeProvider creates and inspects Stripe Checkout sessions.
type StripeProvider struct {
	client        *stripe.Client
	webhookSecret string
	timeout       time.Duration
}

// NewStripeProvider returns a provider using the given secret API key. Every
// outbound call is bounded by timeout.
func NewStripeProvider(apiKey, webhookSecret string, timeout time.Duration) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, errors.New("stripe api key is not set")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &StripeProvider{
		client:        stripe.NewClient(apiKey),
		webhookSecret: webhookSecret,
		timeout:       timeout,
	}, nil
}

func (p *StripeProvider) Name() string { return models.PaymentProviderStripe }

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	name := req.ProductName
	if name == "" {
		name = "Donation"
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SubmitType: stripe.String("donate"),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	s, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, wrapStripeError("create checkout session", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	s, err := p.client.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		return nil, wrapStripeError("retrieve checkout session", err)
	}
	return statusFromSession(s), nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if p.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
	}
	if event.Data != nil && len(event.Data.Raw) > 0 && isCheckoutSessionEvent(out.Type) {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = s.ID
		out.Session = statusFromSession(&s)
	}
	return out, nil
}

func isCheckoutSessionEvent(t string) bool {
	return strings.HasPrefix(t, "checkout.session.")
}

func statusFromSession(s *stripe.CheckoutSession) *CheckoutStatus {
	st := &CheckoutStatus{
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		st.PaymentID = s.PaymentIntent.ID
	}
	return st
}

func wrapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe %s: %s (%s)", op, stripeErr.Msg, stripeErr.Code)
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}
