package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/config"
	jwtinfra "github.com/go-verification-api/internal/infrastructure/jwt"
	"github.com/go-verification-api/internal/infrastructure/lognotify"
	"github.com/go-verification-api/internal/infrastructure/memory"
	"github.com/go-verification-api/internal/infrastructure/smtp"
	"github.com/go-verification-api/internal/infrastructure/sns"
	"github.com/go-verification-api/internal/pkg/logging"
	transporthttp "github.com/go-verification-api/internal/transport/http"
	"github.com/go-verification-api/internal/transport/http/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("notifier: %v", err)
	}

	renderer, err := verification.NewRenderer(verification.RendererConfig{
		AppName:     cfg.AppName,
		LinkBaseURL: cfg.VerifyLinkBaseURL,
	})
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	// One store for the whole process; codes do not survive a restart.
	store := memory.NewCodeStore()
	if cfg.SweepInterval > 0 {
		go store.RunSweeper(ctx, cfg.SweepInterval)
	}

	deps := &transporthttp.Deps{
		Verification: verification.NewService(verification.ServiceDeps{
			Store:           store,
			Notifier:        notifier,
			Renderer:        renderer,
			Random:          verification.NewCryptoRandom(),
			Sender:          cfg.SenderAddress,
			TTL:             cfg.CodeTTL,
			DeliveryTimeout: cfg.DeliveryTimeout,
			Logger:          logger,
		}),
	}

	// Bearer auth for service callers. Without a key the routes stay open.
	if cfg.JWTPublicKeyPath != "" {
		v, err := jwtinfra.NewVerifierFromFile(cfg.JWTPublicKeyPath)
		if err != nil {
			log.Fatalf("jwt verifier: %v", err)
		}
		deps.TokenVerifier = v
	} else {
		logger.Warn("JWT_PUBLIC_KEY_PATH not set; verification routes are unauthenticated")
	}

	if cfg.RateLimitRPS > 0 {
		rl := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		go rl.RunCleanup(ctx, 5*time.Minute)
		deps.RateLimiter = rl
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.DeliveryTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}

func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (verification.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return smtp.NewNotifier(cfg), nil
	case config.NotifierSNS:
		return sns.NewNotifier(ctx, cfg)
	default:
		return lognotify.NewNotifier(logger), nil
	}
}
