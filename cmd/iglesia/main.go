package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yaguita/iglesia-backend/app/controllers"
	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/auth"
	"github.com/yaguita/iglesia-backend/internal/pkg/cache"
	"github.com/yaguita/iglesia-backend/internal/pkg/database"
	"github.com/yaguita/iglesia-backend/internal/pkg/donation"
	"github.com/yaguita/iglesia-backend/internal/pkg/env"
	"github.com/yaguita/iglesia-backend/internal/pkg/hcaptcha"
	"github.com/yaguita/iglesia-backend/internal/pkg/jobqueue"
	"github.com/yaguita/iglesia-backend/internal/pkg/mail"
	"github.com/yaguita/iglesia-backend/internal/pkg/payment"
	"github.com/yaguita/iglesia-backend/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8001")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	basePath := findBasePath()

	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))

	// fiber metrics
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): password,
			},
		}), monitor.New())
	}

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	deps, donations := newDependencies()
	router.InstallRouter(app, deps)

	jobs := jobqueue.NewManager(cache.NewStore(cache.GetClient()), jobqueue.Task{
		Name:     "pending-checkout-sweep",
		Interval: env.GetDuration("PENDING_SWEEP_INTERVAL", 10*time.Minute),
		Run: func(ctx context.Context) error {
			_, err := donations.SweepPending(ctx, env.GetDuration("PENDING_SWEEP_AGE", donation.DefaultSweepAge), donation.DefaultSweepBatch)
			return err
		},
	})
	jobs.Start()
	app.Hooks().OnShutdown(func() error {
		jobs.Stop()
		return nil
	})

	return app
}

func newDependencies() (router.Dependencies, *donation.Service) {
	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	tokens, err := auth.NewManagerFromEnv()
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	provider, err := payment.NewStripeProvider(
		env.GetEnv("STRIPE_API_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		env.GetDuration("PAYMENT_PROVIDER_TIMEOUT", 0),
	)
	if err != nil {
		log.Fatalf("payment provider: %v", err)
	}

	donations := donation.NewService(donation.Dependencies{
		Catalog:      donation.DefaultCatalog(),
		Donations:    repos.Donation,
		Transactions: repos.PaymentTransaction,
		Users:        repos.User,
		Events:       repos.WebhookEvent,
		Provider:     provider,
		Stats:        donation.NewRedisStatsCache(cache.NewStore(cache.GetClient()), donation.StatsCacheTTL),
	})

	church := models.DefaultChurchInfo()
	deps := router.Dependencies{
		Repos:          repos,
		Donations:      donations,
		Tokens:         tokens,
		Church:         church,
		Services:       models.DefaultChurchServices(),
		Notifier:       mail.NewContactNotifier(mail.NewSMTPMailerFromEnv(), env.GetEnv("PASTOR_EMAIL", church.PastorEmail)),
		LimiterStorage: router.NewLimiterStorage(),
		RateLimit:      env.GetInt("RATE_LIMIT_PER_MINUTE", 120),
	}
	// a typed nil would defeat the controller's nil check
	var captcha controllers.CaptchaVerifier
	if v := hcaptcha.NewVerifierFromEnv(); v != nil {
		captcha = v
	}
	deps.Captcha = captcha

	return deps, donations
}

// findBasePath locates the project root from the usual working directories.
func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			return path
		}
	}
	log.Printf("Warning: openapi.yml not found, serving docs from ./public")
	return "./"
}
