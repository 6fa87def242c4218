package main // Entry point package

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Hassanskary/unistay/internal/config"
	"github.com/Hassanskary/unistay/internal/database"
	"github.com/Hassanskary/unistay/internal/handler"
	"github.com/Hassanskary/unistay/internal/hub"
	appmw "github.com/Hassanskary/unistay/internal/middleware"
	"github.com/Hassanskary/unistay/internal/payment"
	"github.com/Hassanskary/unistay/internal/queue"
	"github.com/Hassanskary/unistay/internal/repository"
	"github.com/Hassanskary/unistay/internal/router"
	queuepub "github.com/Hassanskary/unistay/internal/service"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate.
type requestValidator struct{ v *validator.Validate }

func (rv *requestValidator) Validate(i interface{}) error { return rv.v.Struct(i) }

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "unistay").Logger()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// Redis powers rate limiting and response caching; when it is not
	// reachable both features degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and caching disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	homes := repository.NewHomeRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	chats := repository.NewChatRepo(db)
	notifications := repository.NewNotificationRepo(db)
	comments := repository.NewCommentRepo(db)
	ratings := repository.NewRatingRepo(db)
	saves := repository.NewSaveRepo(db)
	reports := repository.NewReportRepo(db)
	bans := repository.NewBanRepo(db)
	facilities := repository.NewFacilityRepo(db)

	// Live push hub and the notifier that couples it with the store.
	liveHub := hub.New(log)
	notifier := queuepub.NewNotifier(notifications, liveHub, log)

	// Card payments are optional; without a key the endpoints answer 501.
	var charger payment.Charger
	if cfg.StripeSecretKey != "" {
		charger = payment.NewStripeCharger(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	ownerH := handler.NewOwnerHandler(cfg, homes, rooms, facilities)
	ownerBookingH := handler.NewOwnerBookingHandler(bookings, rooms, homes, notifier, log)
	bookingH := handler.NewBookingHandler(bookings, rooms, homes, bans, notifier, charger, log)
	publicH := handler.NewPublicHandler(homes, rooms, comments, facilities)
	feedbackH := handler.NewFeedbackHandler(comments, ratings, saves, reports, homes, bans, notifier)
	chatH := handler.NewChatHandler(chats, users, bans, notifier)
	notificationH := handler.NewNotificationHandler(notifications)
	adminH := handler.NewAdminHandler(homes, reports, bans, users, bookings, facilities, notifier)
	wsH := handler.NewWSHandler(liveHub, cfg.JWTSecret, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{v: validator.New()}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.RequestLog(log))
	if rdb != nil {
		e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	router.RegisterRoutes(e, wsH, cfg.UploadDir)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH)
	router.RegisterOwner(e, ownerH, ownerBookingH, cfg.JWTSecret)
	router.RegisterCustomer(e, bookingH, feedbackH, chatH, notificationH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer that appends booking events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Warn().Err(err).Msg("booking consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
