package donation

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
)

const (
	msgInvalidPackage       = "Invalid donation package"
	msgCustomAmountRequired = "Amount required for custom donation"
	msgAmountRequired       = "Amount required"
	msgSessionCreateFailed  = "Error creating payment session"
	msgDonationSaveFailed   = "Error saving donation"
)

// CheckoutRequest is the donor's checkout input. Amount is ignored for
// non-custom packages.
type CheckoutRequest struct {
	PackageID    *string             `json:"package_id"`
	Amount       decimal.NullDecimal `json:"amount"`
	DonationType models.DonationType `json:"donation_type" validate:"omitempty,oneof=one_time monthly yearly"`
	Message      *string             `json:"message" validate:"omitempty,max=1000"`
	Anonymous    bool                `json:"anonymous"`
	DonorName    *string             `json:"donor_name" validate:"omitempty,max=150"`
	DonorEmail   *string             `json:"donor_email" validate:"omitempty,email,max=200"`
	OriginURL    string              `json:"origin_url" validate:"required,url"`
}

type CheckoutResult struct {
	URL        string `json:"url"`
	SessionID  string `json:"session_id"`
	DonationID string `json:"donation_id"`
}

// ResolveAmount applies the package rules to a request. The catalog amount
// always wins over a client amount for fixed packages.
func (s *Service) ResolveAmount(req CheckoutRequest) (decimal.Decimal, *Package, error) {
	if req.PackageID != nil && *req.PackageID != "" {
		pkg, ok := s.catalog.Get(*req.PackageID)
		if !ok {
			return decimal.Zero, nil, apperror.Validation(msgInvalidPackage)
		}
		if pkg.IsCustom() {
			amount, ok := positiveAmount(req.Amount)
			if !ok {
				return decimal.Zero, nil, apperror.Validation(msgCustomAmountRequired)
			}
			return amount, &pkg, nil
		}
		return pkg.Amount, &pkg, nil
	}

	amount, ok := positiveAmount(req.Amount)
	if !ok {
		return decimal.Zero, nil, apperror.Validation(msgAmountRequired)
	}
	return amount, nil, nil
}

func positiveAmount(a decimal.NullDecimal) (decimal.Decimal, bool) {
	if !a.Valid {
		return decimal.Zero, false
	}
	amount := a.Decimal.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// Checkout records a pending donation and opens a provider checkout session
// for it. A donation whose session could not be opened is removed again.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest, donor *Identity) (*CheckoutResult, error) {
	amount, pkg, err := s.ResolveAmount(req)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.Validation(validationMessage(err))
	}

	donationType := req.DonationType
	if donationType == "" {
		donationType = models.DonationTypeOneTime
	}

	d := &models.Donation{
		Amount:        amount,
		Currency:      models.DefaultCurrency,
		DonationType:  donationType,
		Message:       req.Message,
		Anonymous:     req.Anonymous,
		DonorName:     req.DonorName,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.DonationStatusPending,
		Metadata:      datatypes.JSONMap{"source": SourceChurchWebsite},
	}
	if pkg != nil {
		d.Metadata["package_id"] = pkg.ID
	}
	if donor != nil && donor.ID != "" {
		d.UserID = &donor.ID
	}
	if email := donorEmail(req, donor); email != "" {
		d.Email = &email
	}

	if err := s.donations.Create(ctx, d); err != nil {
		return nil, apperror.Persistence(msgDonationSaveFailed, err)
	}

	origin := strings.TrimRight(req.OriginURL, "/")
	metadata := map[string]string{
		"donation_id":   d.ID,
		"donation_type": string(donationType),
		"source":        SourceChurchWebsite,
	}
	if d.UserID != nil {
		metadata["user_id"] = *d.UserID
	}
	if d.DonorName != nil && *d.DonorName != "" {
		metadata["donor_name"] = *d.DonorName
	}

	sessionReq := payment.CheckoutSessionRequest{
		Amount:      amount,
		Currency:    models.DefaultCurrency,
		ProductName: productName(pkg),
		SuccessURL:  origin + SuccessPath + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + CancelPath,
		Metadata:    metadata,
	}
	if d.Email != nil {
		sessionReq.CustomerEmail = *d.Email
	}

	session, err := s.provider.CreateCheckoutSession(ctx, sessionReq)
	if err != nil {
		s.discard(ctx, d.ID)
		return nil, apperror.Upstream(msgSessionCreateFailed, err)
	}

	tx := &models.PaymentTransaction{
		SessionID:     session.ID,
		UserID:        d.UserID,
		Email:         d.Email,
		Amount:        amount,
		Currency:      models.DefaultCurrency,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.DonationStatusPending,
		DonationID:    &d.ID,
		Metadata:      toJSONMap(metadata),
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		s.discard(ctx, d.ID)
		return nil, apperror.Persistence(msgSessionCreateFailed, err)
	}

	if err := s.donations.SetPaymentSessionID(ctx, d.ID, session.ID); err != nil {
		// The transaction still links the session to the donation.
		log.Warnf("[Donation] set session id %s on donation %s: %v", session.ID, d.ID, err)
	}

	log.Debugf("[Donation] session %s expects provider events at %s", session.ID, WebhookURL(origin))
	log.Infof("[Donation] checkout session %s opened for donation %s (%s %s)", session.ID, d.ID, amount.StringFixed(2), models.DefaultCurrency)

	return &CheckoutResult{
		URL:        session.URL,
		SessionID:  session.ID,
		DonationID: d.ID,
	}, nil
}

// WebhookURL is where the provider is expected to deliver events for origin.
// It is informational and only logged: Checkout sessions carry no per-session
// webhook URL, so the endpoint must be registered in the Stripe dashboard.
func WebhookURL(origin string) string {
	return strings.TrimRight(origin, "/") + WebhookPath
}

func (s *Service) discard(ctx context.Context, donationID string) {
	if err := s.donations.Delete(ctx, donationID); err != nil {
		log.Errorf("[Donation] failed to remove donation %s after checkout failure: %v", donationID, err)
	}
}

func donorEmail(req CheckoutRequest, donor *Identity) string {
	if req.DonorEmail != nil {
		if email := strings.TrimSpace(*req.DonorEmail); email != "" {
			return strings.ToLower(email)
		}
	}
	if donor != nil {
		return strings.ToLower(strings.TrimSpace(donor.Email))
	}
	return ""
}

func productName(pkg *Package) string {
	if pkg == nil || pkg.IsCustom() {
		return "Don"
	}
	return fmt.Sprintf("Don - %s", pkg.Name)
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "OriginURL":
		return "A valid origin_url is required"
	case "DonorEmail":
		return "Invalid donor email"
	case "DonationType":
		return "Invalid donation type"
	}
	return fmt.Sprintf("Invalid %s", strings.ToLower(fe.Field()))
}
