package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
)

const contactListLimit = 100

// ContactNotifier is told about every stored contact message.
type ContactNotifier interface {
	NotifyContact(msg *models.ContactMessage) error
}

// CaptchaVerifier checks a client captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

type ContactRequest struct {
	Name         string  `json:"name" validate:"required,max=150"`
	Email        string  `json:"email" validate:"required,email,max=200"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
	Subject      string  `json:"subject" validate:"required,max=255"`
	Message      string  `json:"message" validate:"required,max=5000"`
	CaptchaToken string  `json:"h-captcha-response"`
}

type ContactController struct {
	repo     repository.ContactRepository
	notifier ContactNotifier
	captcha  CaptchaVerifier
}

// NewContactController wires the contact form. notifier and captcha are optional.
func NewContactController(repo repository.ContactRepository, notifier ContactNotifier, captcha CaptchaVerifier) *ContactController {
	return &ContactController{repo: repo, notifier: notifier, captcha: captcha}
}

func (cc *ContactController) HandleCreate(c *fiber.Ctx) error {
	var req ContactRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if cc.captcha != nil {
		if ok, err := cc.captcha.Verify(c.UserContext(), req.CaptchaToken); !ok {
			log.Infof("[Contact] captcha rejected: %v", err)
			return apperror.Validation("Vérification captcha échouée")
		}
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
		Status:  models.MessageStatusNew,
	}
	if err := cc.repo.Create(msg); err != nil {
		return apperror.Persistence("Erreur lors de l'envoi du message", err)
	}

	if cc.notifier != nil {
		go func(m models.ContactMessage) {
			if err := cc.notifier.NotifyContact(&m); err != nil {
				log.Warnf("[Contact] notification for %s failed: %v", m.ID, err)
			}
		}(*msg)
	}

	return c.JSON(msg)
}

// HandleList returns the newest messages (admin)
func (cc *ContactController) HandleList(c *fiber.Ctx) error {
	messages, err := cc.repo.ListRecent(contactListLimit)
	if err != nil {
		return apperror.Persistence("Erreur lors du chargement des messages", err)
	}
	if messages == nil {
		messages = []models.ContactMessage{}
	}
	return c.JSON(messages)
}
