package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/config"
	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/logger"
	"github.com/gdsanger/KManager-sub000/internal/router"
	"github.com/gdsanger/KManager-sub000/internal/service"
	"github.com/gdsanger/KManager-sub000/internal/worker"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Migrations)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	var (
		dispatcher *worker.Dispatcher
		jobs       service.DocumentJobDispatcher
	)
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
		jobs = dispatcher
	} else {
		log.Warn().Msg("REDIS_URL not set, issued documents are not rendered or mailed")
	}

	svc := service.NewRegistry(db, service.RegistryConfig{
		CompanyCountry:  cfg.CompanyCountry,
		ZeroTaxRateCode: cfg.ZeroTaxRateCode,
		Dispatcher:      jobs,
	})

	if !mailer.Configured() || dispatcher == nil {
		log.Warn().Msg("SMTP_HOST or REDIS_URL not set, document mails are not sent")
		mailCB = nil
	}
	if dispatcher != nil {
		handlers := map[string]worker.JobHandler{}
		var emails worker.EmailEnqueuer
		if mailer.Configured() {
			emails = dispatcher
			handlers[worker.JobEmail] = worker.NewEmailWorker(mailer, mailCB)
		}
		handlers[worker.JobDocumentDelivery] = worker.NewDocumentWorker(svc.DocumentRepo, emails, cfg.PDFStoragePath)
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	}

	if cfg.BillingCronEnabled {
		worker.StartBillingCron(ctx, worker.BillingCronConfig{
			Billing:  svc.Billing,
			Interval: cfg.BillingCronInterval,
		})
	}

	r := router.New(cfg, db, rdb, mailCB, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("KManager backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel() // stops workers and cron
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
