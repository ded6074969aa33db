package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/yaguita/iglesia-backend/app/controllers"
	"github.com/yaguita/iglesia-backend/internal/pkg/donation"
	"github.com/yaguita/iglesia-backend/internal/pkg/middleware"
)

const defaultRateLimit = 120

type ApiRouter struct {
	deps Dependencies
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", h.limiter(), middleware.Authenticate(h.deps.Tokens))
	api.Get("/", controllers.HandleRoot)

	h.registerDonationRoutes(api)
	h.registerAuthRoutes(api)
	h.registerSiteRoutes(api)
}

func (h ApiRouter) registerDonationRoutes(api fiber.Router) {
	dc := controllers.NewDonationController(h.deps.Donations)

	donations := api.Group("/donations")
	donations.Get("/packages", dc.HandleListPackages)
	donations.Post("/checkout", dc.HandleCheckout)
	donations.Get("/status/:session_id", dc.HandleCheckStatus)
	donations.Get("/my-donations", middleware.RequireAuth, dc.HandleMyDonations)
	donations.Get("/stats", middleware.RequireAdmin, dc.HandleStats)

	api.Post("/webhook/stripe", dc.HandleStripeWebhook)
}

func (h ApiRouter) registerAuthRoutes(api fiber.Router) {
	ac := controllers.NewAuthController(h.deps.Repos.User, h.deps.Tokens)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", ac.HandleRegister)
	authGroup.Post("/login", ac.HandleLogin)
	authGroup.Get("/me", middleware.RequireAuth, ac.HandleMe)
	authGroup.Put("/profile", middleware.RequireAuth, ac.HandleUpdateProfile)
}

func (h ApiRouter) registerSiteRoutes(api fiber.Router) {
	church := controllers.NewChurchController(h.deps.Church, h.deps.Services)
	api.Get("/church", church.HandleChurchInfo)
	api.Get("/services", church.HandleServices)

	contact := controllers.NewContactController(h.deps.Repos.Contact, h.deps.Notifier, h.deps.Captcha)
	api.Post("/contact", contact.HandleCreate)
	api.Get("/contact", middleware.RequireAdmin, contact.HandleList)

	newsletter := controllers.NewNewsletterController(h.deps.Repos.Newsletter)
	api.Post("/newsletter/subscribe", newsletter.HandleSubscribe)
	api.Get("/newsletter/subscribers", middleware.RequireAdmin, newsletter.HandleListSubscribers)

	events := controllers.NewEventController(h.deps.Repos.Event)
	api.Get("/events", events.HandleList)
	api.Get("/events/:id", events.HandleGet)
	api.Post("/events", middleware.RequireAdmin, events.HandleCreate)
}

// limiter throttles per client IP. Provider webhooks are never throttled.
func (h ApiRouter) limiter() fiber.Handler {
	limit := h.deps.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    h.deps.LimiterStorage,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == donation.WebhookPath
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Trop de requêtes, veuillez réessayer plus tard",
			})
		},
	})
}
