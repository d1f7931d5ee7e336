package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/reviewdeck/reviewdeck/docs"
	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
	"github.com/reviewdeck/reviewdeck/internal/core/service"
	"github.com/reviewdeck/reviewdeck/internal/infrastructure/config"
	mongodb "github.com/reviewdeck/reviewdeck/internal/infrastructure/db/mongo"
	redisdb "github.com/reviewdeck/reviewdeck/internal/infrastructure/db/redis"
	"github.com/reviewdeck/reviewdeck/internal/infrastructure/mail"
	"github.com/reviewdeck/reviewdeck/pkg/logger"
)

// @title        ReviewDeck API
// @version      1.0
// @description  Content review platform: passwordless auth, titles, reviews and derived ratings.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Collaborators ---
	var mailer ports.Mailer
	if cfg.SMTP.Addr != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Addr, cfg.SMTP.From)
	} else {
		log.Warn().Msg("SMTP_ADDR not set, confirmation mail goes to the log")
		mailer = mail.NewLogMailer(log)
	}

	// --- Core services ---
	userRepo := mongodb.NewUserRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)

	codes := service.NewCodeIssuer(cfg.ConfirmationSecret)
	ratings := service.NewRatingAggregator(reviewRepo, redisdb.NewRatingCache(rdb), log)

	svc := api.Services{
		Auth:  service.NewAuthService(userRepo, codes, mailer, cfg.JWTSecret, cfg.TokenTTL, log),
		Users: service.NewUserService(userRepo, log),
		Catalog: service.NewCatalogService(
			mongodb.NewCategoryRepository(db),
			mongodb.NewGenreRepository(db),
			mongodb.NewTitleRepository(db),
			ratings,
			log,
		),
		Reviews: service.NewReviewService(
			mongodb.NewTitleRepository(db),
			reviewRepo,
			mongodb.NewCommentRepository(db),
			ratings,
			domain.ScoreBounds{Min: cfg.ScoreMin, Max: cfg.ScoreMax},
			log,
		),
	}

	e := api.NewRouter(svc, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
