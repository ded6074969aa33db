package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/donation"
	"github.com/yaguita/iglesia-backend/internal/pkg/usercontext"
)

const stripeSignatureHeader = "Stripe-Signature"

// DonationService is the donation lifecycle used by the HTTP layer.
type DonationService interface {
	Packages() []donation.Package
	Checkout(ctx context.Context, req donation.CheckoutRequest, donor *donation.Identity) (*donation.CheckoutResult, error)
	CheckStatus(ctx context.Context, sessionID string) (*donation.StatusResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Stats(ctx context.Context) models.DonationStats
	History(ctx context.Context, userID string, limit int) ([]models.Donation, error)
}

// DonationController exposes packages, checkout, status, history, stats and
// the provider webhook.
type DonationController struct {
	svc DonationService
}

func NewDonationController(svc DonationService) *DonationController {
	return &DonationController{svc: svc}
}

// HandleListPackages returns the donation tiers in catalog order
func (dc *DonationController) HandleListPackages(c *fiber.Ctx) error {
	return c.JSON(dc.svc.Packages())
}

// HandleCheckout opens a checkout session for the caller
func (dc *DonationController) HandleCheckout(c *fiber.Ctx) error {
	var req donation.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	var donor *donation.Identity
	if uc := usercontext.GetUserContext(c); uc.IsLoggedIn {
		donor = &donation.Identity{ID: uc.UserID, Email: uc.Email}
	}

	res, err := dc.svc.Checkout(c.UserContext(), req, donor)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// HandleCheckStatus reconciles and returns the state of a checkout session
func (dc *DonationController) HandleCheckStatus(c *fiber.Ctx) error {
	res, err := dc.svc.CheckStatus(c.UserContext(), c.Params("session_id"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// HandleMyDonations lists the authenticated user's donations
func (dc *DonationController) HandleMyDonations(c *fiber.Ctx) error {
	limit := queryLimit(c, donation.DefaultHistoryLimit, donation.MaxHistoryLimit)
	list, err := dc.svc.History(c.UserContext(), usercontext.GetUserID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// HandleStats returns the aggregate over completed donations (admin)
func (dc *DonationController) HandleStats(c *fiber.Ctx) error {
	return c.JSON(dc.svc.Stats(c.UserContext()))
}

// HandleStripeWebhook applies a signed provider event. Any failure is a 400 so
// the provider retries the delivery.
func (dc *DonationController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := dc.svc.HandleWebhook(c.UserContext(), payload, c.Get(stripeSignatureHeader)); err != nil {
		log.Warnf("[Webhook] stripe delivery rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   string(apperror.KindValidation),
			"message": "Webhook processing failed",
		})
	}
	return c.JSON(fiber.Map{"status": "success"})
}
