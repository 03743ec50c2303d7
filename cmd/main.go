package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"listeningroom/backend/internal/api/handler"
	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/config"
	"listeningroom/backend/internal/location"
	"listeningroom/backend/internal/notify"
	"listeningroom/backend/internal/payments"
	"listeningroom/backend/internal/session"
	"listeningroom/backend/internal/signalhub"
	"listeningroom/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("connecting to Redis")
	}

	return db, rdb
}

func setupNotifications(cfg *config.Config) *notify.Queue {
	var sink notify.Sink = notify.NopSink{}
	if cfg.TelegramBotToken != "" {
		tgSink, err := notify.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.Error().Err(err).Msg("telegram sink unavailable, notifications disabled")
		} else {
			sink = tgSink
		}
	}
	return notify.NewQueue(sink)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file, reading environment directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("env", cfg.Env).Msg("starting listening room backend")

	db, rdb := setupDependencies(cfg)
	store := storage.NewStorageService(db, rdb)
	if err := store.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("running migrations")
	}

	authSvc := auth.NewService(cfg.JWTSecret, "listeningroom")
	sessions := session.NewService(store)
	hub := signalhub.NewManager(store)
	queue := setupNotifications(cfg)

	go hub.Run()
	go queue.Run()

	h := handler.NewHandler(
		store,
		sessions,
		authSvc,
		hub,
		payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		payments.NewFlutterwaveProvider(cfg.FlutterwaveSecret, cfg.FlutterwaveHash),
		location.NewDetector(cfg.GeoAPIBaseURL, cfg.RatesAPIBaseURL),
		queue,
		cfg.DonationRedirectURL,
	)

	r := gin.Default()
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
