package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/auth"
	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/insights"
	applog "ledger/internal/log"
	"ledger/internal/mail"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.DefaultConfig().Level, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var mailer mail.Sender = mail.LogSender{Logger: logger.WithComponent(applog.ComponentMail).Logger}
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendSender(cfg.ResendAPIKey)
	} else {
		logger.Warn("RESEND_API_KEY not set, verification emails will only be logged")
	}

	apiKey := ""
	if cfg.InsightsEnabled() {
		apiKey = cfg.AnthropicAPIKey
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, insights are disabled")
	}
	insightCache := cache.NewLRUCache[string](200, 24*time.Hour)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(insightCache)
	caches.StartCleanup(10 * time.Minute)

	deps := apphttp.Deps{
		Expenses: services.NewExpenseService(result.Store, result.Store),
		Budgets:  services.NewBudgetService(result.Store),
		Accounts: services.NewAccountService(result.Store, services.AccountConfig{
			BaseURL:    cfg.BaseURL,
			MailFrom:   cfg.MailFrom,
			BcryptCost: cfg.BcryptCost,
		}, result.VerificationQueue(), mailer),
		Insights: insights.NewService(
			insights.NewAnthropicClient(apiKey, cfg.AnthropicModel),
			insightCache,
			logger.WithComponent(applog.ComponentInsights).Logger),
		Sessions:     auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL),
		Store:        result.Store,
		Caches:       caches,
		InsightCache: insightCache,
		Logger:       logger,
	}
	if cfg.GoogleEnabled() {
		deps.Google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL+"/auth/google/callback")
		logger.Info("Google sign-in enabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		SecureCookies:      cfg.SecureCookies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"queue", result.Queue != nil,
		"insights", cfg.InsightsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
