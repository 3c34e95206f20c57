package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inesa/internal/amqp"
	"inesa/internal/backend"
	"inesa/internal/config"
	"inesa/internal/export/pdf"
	"inesa/internal/export/xlsx"
	apphttp "inesa/internal/http"
	"inesa/internal/images"
	"inesa/internal/log"
	"inesa/internal/report"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateSource(ctx, backendCfg)
	if err != nil {
		logger.Error("failed to initialize ledger source",
			log.FieldBackend, cfg.LedgerBackend,
			log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	var fetcher images.Fetcher
	if cfg.UploadBaseURL != "" {
		fetcher = images.NewHTTPFetcher(cfg.UploadBaseURL, cfg.FetchTimeout)
	} else {
		logger.Warn("no upload base URL configured, receipts will render as failed")
	}

	// AMQP is optional: without a broker the service just skips events.
	var notifier report.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, continuing without events",
				log.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
			logger.Info("initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	service := report.NewService(report.ServiceOptions{
		Source:         result.Source,
		BalanceMode:    report.BalanceMode(cfg.BalanceMode),
		Fetcher:        fetcher,
		PDF:            pdf.NewCompiler(cfg.ReportTitle, cfg.OrgLabel, cfg.FooterCaption, logger),
		XLSX:           xlsx.NewCompiler(cfg.ReportTitle, cfg.OrgLabel, logger),
		Notifier:       notifier,
		PDFImageBatch:  cfg.PDFImageBatch,
		XLSXImageBatch: cfg.XLSXImageBatch,
		FetchWorkers:   cfg.FetchWorkers,
		Logger:         logger,
	})

	srv := apphttp.NewServer(":"+cfg.Port, service, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 120 * time.Second // exports fetch receipts before responding
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting inesa report server",
		"port", cfg.Port,
		log.FieldBackend, cfg.LedgerBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
