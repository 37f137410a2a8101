package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/pontdesarts/lovelock/internal/config"
	"github.com/pontdesarts/lovelock/internal/database"
	"github.com/pontdesarts/lovelock/internal/handler"
	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/queue"
	"github.com/pontdesarts/lovelock/internal/repository"
	"github.com/pontdesarts/lovelock/internal/router"
	"github.com/pontdesarts/lovelock/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	lockRepo := repository.NewLockRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	eventRepo := repository.NewWebhookEventRepo(db)
	promoRepo := repository.NewPromoRepo(db)
	profileRepo := repository.NewProfileRepo(db)

	stripeProv := payment.NewStripeProvider(
		cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, cfg.HoldTTL)

	checkout := service.NewCheckoutService(lockRepo, promoRepo, profileRepo, stripeProv, cfg.HoldTTL)
	reconciler := service.NewReconciler("stripe", lockRepo, txRepo, eventRepo, promoRepo, service.QueueNotifier{})
	reaper := service.NewReaper(lockRepo)
	availability := service.NewAvailabilityService(lockRepo)

	// Confirmation emails ride the broker; the consumer reconnects on
	// its own and never takes the server down.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	// In-process safety net alongside the cron endpoint.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reaper.Run(ctx, cfg.ReaperInterval)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Checkout:     handler.NewCheckoutHandler(checkout),
		Webhook:      handler.NewWebhookHandler(stripeProv, reconciler),
		Availability: handler.NewAvailabilityHandler(availability),
		Lock:         handler.NewLockHandler(lockRepo, txRepo),
		Profile:      handler.NewProfileHandler(profileRepo),
		Admin:        handler.NewAdminHandler(lockRepo, txRepo),
		Reaper:       handler.NewReaperHandler(reaper),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
