// Command server runs the wardrobe assistant HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/vestiq/go-wardrobe-backend/internal/auth"
	"github.com/vestiq/go-wardrobe-backend/internal/config"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
	apihttp "github.com/vestiq/go-wardrobe-backend/internal/http"
	"github.com/vestiq/go-wardrobe-backend/internal/logsetup"
	"github.com/vestiq/go-wardrobe-backend/internal/observability"
	"github.com/vestiq/go-wardrobe-backend/internal/repo"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title           Wardrobe Assistant API
// @version         1.0
// @description     Conversational wardrobe assistant: guided garment creation, edits, virtual try-on, outfit suggestions, and style advice.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logsetup.Init(cfg.LogLevel, cfg.LogPretty)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.Setup(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	// Hourly sweep of expired sessions, cache rows, and idempotency records.
	// Expired sessions linger one extra TTL so late confirmations still get
	// a SESSION_EXPIRED answer instead of a fresh session.
	purger := cron.New()
	if _, err := purger.AddFunc("@hourly", func() {
		if err := repo.PurgeExpired(db, time.Now(), cfg.Workflow.SessionTTL); err != nil {
			log.Warn().Err(err).Msg("purge expired rows")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("schedule purge job")
	}
	purger.Start()
	defer purger.Stop()

	gen := &genclient.Client{
		BaseURL:      cfg.Gen.BaseURL,
		APIKey:       cfg.Gen.APIKey,
		HTTP:         &http.Client{},
		MaxAttempts:  cfg.Gen.MaxAttempts,
		BaseBackoff:  cfg.Gen.BaseBackoff,
		Timeout:      cfg.Gen.Timeout,
		TryOnTimeout: cfg.Gen.TryOnTimeout,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	apihttp.RegisterRoutes(r, db, gen, auth.NewHMACVerifier(cfg.AuthSecret), cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	// Generation turns can run for minutes; give in-flight requests room.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownOTel(context.Background()); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
}
