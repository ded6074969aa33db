package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
)

const subscriberListLimit = 1000

type NewsletterRequest struct {
	Email string  `json:"email" validate:"required,email,max=200"`
	Name  *string `json:"name" validate:"omitempty,max=150"`
}

type NewsletterController struct {
	repo repository.NewsletterRepository
}

func NewNewsletterController(repo repository.NewsletterRepository) *NewsletterController {
	return &NewsletterController{repo: repo}
}

func (nc *NewsletterController) HandleSubscribe(c *fiber.Ctx) error {
	var req NewsletterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := nc.repo.EmailExists(email)
	if err != nil {
		return apperror.Persistence("Erreur lors de l'inscription à la newsletter", err)
	}
	if exists {
		return apperror.Validation("Cette adresse e-mail est déjà inscrite à notre newsletter")
	}

	sub := &models.NewsletterSubscriber{Email: email, Name: req.Name, Active: true}
	if err := nc.repo.Create(sub); err != nil {
		return apperror.Persistence("Erreur lors de l'inscription à la newsletter", err)
	}
	return c.JSON(sub)
}

// HandleListSubscribers returns active subscribers (admin)
func (nc *NewsletterController) HandleListSubscribers(c *fiber.Ctx) error {
	subs, err := nc.repo.ListActive(subscriberListLimit)
	if err != nil {
		return apperror.Persistence("Erreur lors du chargement des abonnés", err)
	}
	if subs == nil {
		subs = []models.NewsletterSubscriber{}
	}
	return c.JSON(subs)
}
