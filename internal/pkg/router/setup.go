package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yaguita/iglesia-backend/app/controllers"
	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/auth"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the collaborators the HTTP routes are built from.
// Notifier, Captcha and LimiterStorage are optional.
type Dependencies struct {
	Repos     *repository.Repositories
	Donations controllers.DonationService
	Tokens    *auth.Manager
	Church    models.ChurchInfo
	Services  []models.ChurchService
	Notifier  controllers.ContactNotifier
	Captcha   controllers.CaptchaVerifier

	LimiterStorage fiber.Storage
	RateLimit      int
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
