package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	applog "ledger/internal/log"
	"ledger/internal/mail"
	"ledger/internal/services"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.DefaultConfig().Level, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentWorker)

	logger.Info("Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the mail worker")
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Error("The mail worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The worker reads verification tokens from the same database as the server.
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var mailer mail.Sender = mail.LogSender{Logger: logger.WithComponent(applog.ComponentMail).Logger}
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendSender(cfg.ResendAPIKey)
	} else {
		logger.Warn("RESEND_API_KEY not set, verification emails will only be logged")
	}

	accounts := services.NewAccountService(sqliteRepo, services.AccountConfig{
		BaseURL:    cfg.BaseURL,
		MailFrom:   cfg.MailFrom,
		BcryptCost: cfg.BcryptCost,
	}, nil, mailer)
	mailWorker := worker.NewMailWorker(accounts)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	logger.Info("Consuming verification emails", "queue", cfg.AMQPQueue)
	if err := mailWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
