package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/smilepoint-dental/contact-service/internal/api/router"
	"github.com/smilepoint-dental/contact-service/internal/captcha"
	appconfig "github.com/smilepoint-dental/contact-service/internal/config"
	"github.com/smilepoint-dental/contact-service/internal/contact"
	"github.com/smilepoint-dental/contact-service/internal/http/handlers"
	"github.com/smilepoint-dental/contact-service/internal/mailer"
	"github.com/smilepoint-dental/contact-service/internal/observability/metrics"
	"github.com/smilepoint-dental/contact-service/internal/ratelimit"
	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting contact service",
		"env", cfg.Env,
		"port", cfg.Port,
		"email_service", cfg.EmailService,
	)

	var limiter ratelimit.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		limiter = ratelimit.NewRedisStore(redis.NewClient(opts), cfg.RateLimitMax, cfg.RateLimitWindow, logger)
		logger.Info("using redis rate limit store", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryStore(cfg.RateLimitMax, cfg.RateLimitWindow)
		logger.Info("using in-memory rate limit store")
	}

	sender, err := mailer.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to configure email sender", "error", err)
		os.Exit(1)
	}
	dispatcher := mailer.NewDispatcher(sender, mailer.Routes{
		Default:     cfg.ContactEmail,
		Ruimsig:     cfg.ContactEmailRuimsig,
		Weltevreden: cfg.ContactEmailWeltevreden,
	}, logger)

	verifier := captcha.NewVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore, logger)
	if cfg.RecaptchaSecretKey == "" {
		logger.Warn("RECAPTCHA_SECRET_KEY not set, captcha verification disabled")
	}

	contactMetrics := metrics.NewContactMetrics(nil)
	pipeline := contact.NewPipeline(verifier, limiter, dispatcher, contactMetrics, logger, cfg.MinFormSeconds)

	r := router.New(&router.Config{
		Logger:             logger,
		ContactHandler:     handlers.NewContactHandler(pipeline, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
