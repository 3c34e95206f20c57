package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inesa/internal/core"
	"inesa/internal/export"
	"inesa/internal/images"
	"inesa/internal/ledger"
	"inesa/internal/log"
)

// Format selects the artifact format of a compilation request.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Notification describes a finished artifact for downstream consumers.
type Notification struct {
	Format      Format
	Filename    string
	Period      core.ReportPeriod
	EntryCount  int
	ByteSize    int
	GeneratedAt time.Time
}

// Notifier announces finished reports. Publishing is best effort: a failed
// notification never fails the report itself.
type Notifier interface {
	ReportGenerated(ctx context.Context, n Notification) error
}

// ServiceOptions wires the service's collaborators. Fetcher and Notifier may
// be nil: a nil fetcher degrades receipt cells to the failed label, a nil
// notifier disables event publishing.
type ServiceOptions struct {
	Source      ledger.Source
	BalanceMode BalanceMode
	Fetcher     images.Fetcher
	PDF         export.Compiler
	XLSX        export.Compiler
	Notifier    Notifier

	PDFImageBatch  int
	XLSXImageBatch int
	FetchWorkers   int

	Logger *log.Logger
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Service runs the full report flow: resolve the period, aggregate ledger
// rows, embed receipt images and compile the requested artifact. Every
// request builds its inputs from scratch; nothing is cached between
// generations.
type Service struct {
	aggregator *Aggregator
	fetcher    images.Fetcher
	pdf        export.Compiler
	xlsx       export.Compiler
	notifier   Notifier

	pdfBatch  int
	xlsxBatch int
	workers   int

	logger *log.Logger
	now    func() time.Time
}

func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		aggregator: NewAggregator(opts.Source, opts.BalanceMode, logger),
		fetcher:    opts.Fetcher,
		pdf:        opts.PDF,
		xlsx:       opts.XLSX,
		notifier:   opts.Notifier,
		pdfBatch:   opts.PDFImageBatch,
		xlsxBatch:  opts.XLSXImageBatch,
		workers:    opts.FetchWorkers,
		logger:     logger.WithComponent(log.ComponentReport),
		now:        now,
	}
}

// Data resolves the period and returns the aggregated rows and summary, the
// JSON view of the report.
func (s *Service) Data(ctx context.Context, token RangeToken, custom CustomRange) (core.ReportData, error) {
	period, err := Resolve(token, s.now(), custom)
	if err != nil {
		return core.ReportData{}, err
	}
	return s.aggregator.Aggregate(ctx, period)
}

// Compile produces the downloadable artifact for the period.
func (s *Service) Compile(ctx context.Context, token RangeToken, custom CustomRange, format Format) (export.Artifact, error) {
	compiler, batch, err := s.compilerFor(format)
	if err != nil {
		return export.Artifact{}, err
	}

	period, err := Resolve(token, s.now(), custom)
	if err != nil {
		return export.Artifact{}, err
	}

	data, err := s.aggregator.Aggregate(ctx, period)
	if err != nil {
		return export.Artifact{}, err
	}

	pipeline := images.NewPipeline(s.fetcher, batch, s.workers, s.logger)
	embedded, err := pipeline.Resolve(ctx, data.Entries)
	if err != nil {
		if !errors.Is(err, core.ErrPipelineUnavailable) {
			return export.Artifact{}, err
		}
		// Degrade instead of failing the report: every eligible receipt
		// renders as failed-to-load.
		s.logger.WarnContext(ctx, "image pipeline unavailable, compiling without receipts",
			log.FieldFormat, string(format))
		embedded = images.FailedMap(data.Entries, batch)
	}

	generatedAt := s.now()
	artifact, err := compiler.Compile(ctx, export.Input{
		Report:      data,
		Images:      embedded,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return export.Artifact{}, err
	}

	s.notify(ctx, Notification{
		Format:      format,
		Filename:    artifact.Filename,
		Period:      period,
		EntryCount:  len(data.Entries),
		ByteSize:    len(artifact.Data),
		GeneratedAt: generatedAt,
	})

	return artifact, nil
}

func (s *Service) compilerFor(format Format) (export.Compiler, int, error) {
	switch format {
	case FormatPDF:
		return s.pdf, s.pdfBatch, nil
	case FormatXLSX:
		return s.xlsx, s.xlsxBatch, nil
	default:
		return nil, 0, fmt.Errorf("unsupported report format %q", format)
	}
}

func (s *Service) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ReportGenerated(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "report notification failed",
			log.FieldFormat, string(n.Format),
			log.FieldError, err)
	}
}
