// Command inesa-export compiles a report from the command line and writes
// the artifact to disk, without running the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"inesa/internal/backend"
	"inesa/internal/config"
	"inesa/internal/export/pdf"
	"inesa/internal/export/xlsx"
	"inesa/internal/images"
	"inesa/internal/log"
	"inesa/internal/report"
)

func main() {
	_ = godotenv.Load()

	var (
		rangeFlag  = flag.String("range", "7days", "period preset: today, yesterday, 7days, 1month, 3months, 6months, 1year, custom")
		startFlag  = flag.String("start", "", "custom range start (YYYY-MM-DD)")
		endFlag    = flag.String("end", "", "custom range end (YYYY-MM-DD)")
		formatFlag = flag.String("format", "pdf", "artifact format: pdf or xlsx")
		outFlag    = flag.String("out", "", "output path (defaults to the artifact filename)")
	)
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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
	}

	service := report.NewService(report.ServiceOptions{
		Source:         result.Source,
		BalanceMode:    report.BalanceMode(cfg.BalanceMode),
		Fetcher:        fetcher,
		PDF:            pdf.NewCompiler(cfg.ReportTitle, cfg.OrgLabel, cfg.FooterCaption, logger),
		XLSX:           xlsx.NewCompiler(cfg.ReportTitle, cfg.OrgLabel, logger),
		PDFImageBatch:  cfg.PDFImageBatch,
		XLSXImageBatch: cfg.XLSXImageBatch,
		FetchWorkers:   cfg.FetchWorkers,
		Logger:         logger,
	})

	token := report.RangeToken(*rangeFlag)
	custom := report.CustomRange{Start: *startFlag, End: *endFlag}
	if custom.Start != "" || custom.End != "" {
		token = report.RangeCustom
	}

	artifact, err := service.Compile(ctx, token, custom, report.Format(*formatFlag))
	if err != nil {
		logger.Error("report compilation failed",
			log.FieldRangeToken, string(token),
			log.FieldFormat, *formatFlag,
			log.FieldError, err)
		os.Exit(1)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = artifact.Filename
	}
	if err := os.WriteFile(outPath, artifact.Data, 0644); err != nil {
		logger.Error("failed to write artifact", log.FieldFilename, outPath, log.FieldError, err)
		os.Exit(1)
	}

	fmt.Println(outPath)
}
