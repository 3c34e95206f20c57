package images

import (
	"bytes"
	"context"
	"image"
	"path"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/sync/errgroup"

	"inesa/internal/core"
	"inesa/internal/log"
)

// Format is the embeddable raster encoding of a fetched receipt.
type Format string

const (
	PNG  Format = "PNG"
	JPEG Format = "JPEG"
)

// Embedded is the per-row pipeline result. Data == nil marks a fetch or
// decode failure; Width/Height are pixel dimensions of a successful decode.
type Embedded struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// Failed reports whether the fetch or decode for this row failed.
func (e Embedded) Failed() bool {
	return e.Data == nil
}

// RasterFormat classifies a receipt reference by filename extension. Only
// .png, .jpg and .jpeg references are fetched; everything else is treated as
// an external file by the compilers.
func RasterFormat(ref string) (Format, bool) {
	switch strings.ToLower(path.Ext(ref)) {
	case ".png":
		return PNG, true
	case ".jpg", ".jpeg":
		return JPEG, true
	default:
		return "", false
	}
}

// Pipeline fetches receipt scans for a bounded batch of ledger rows. One
// row's failure never taints another: failures are recorded per row and the
// batch always settles.
type Pipeline struct {
	fetcher  Fetcher
	maxBatch int
	workers  int
	logger   *log.Logger
}

// NewPipeline builds a pipeline with the given batch cap and worker limit.
// maxBatch <= 0 means no cap.
func NewPipeline(fetcher Fetcher, maxBatch, workers int, logger *log.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Pipeline{
		fetcher:  fetcher,
		maxBatch: maxBatch,
		workers:  workers,
		logger:   logger.WithComponent(log.ComponentPipeline),
	}
}

// Resolve fetches and decodes the receipt image for every eligible row, up
// to the batch cap, and returns a map keyed by row index. Eligible rows are
// those whose reference carries a raster extension; earlier rows win when
// the cap truncates the set, and truncated rows are simply absent from the
// map so compilers can label them as not attempted.
//
// Resolve returns only after every issued fetch has settled. The only error
// it returns is core.ErrPipelineUnavailable for a missing fetch capability;
// per-row failures are encoded in the map.
func (p *Pipeline) Resolve(ctx context.Context, entries []core.LedgerEntry) (map[int]Embedded, error) {
	if p.fetcher == nil {
		return nil, core.ErrPipelineUnavailable
	}

	type job struct {
		row    int
		ref    string
		format Format
	}
	var jobs []job
	for i, e := range entries {
		if !e.HasReceipt() {
			continue
		}
		format, ok := RasterFormat(e.ReceiptRef)
		if !ok {
			continue
		}
		jobs = append(jobs, job{row: i, ref: e.ReceiptRef, format: format})
		if p.maxBatch > 0 && len(jobs) == p.maxBatch {
			break
		}
	}

	results := make([]Embedded, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, j := range jobs {
		g.Go(func() error {
			data, err := p.fetcher.Fetch(gctx, j.ref)
			if err != nil {
				p.logger.WarnContext(gctx, "receipt fetch failed",
					log.FieldReceiptRef, j.ref,
					log.FieldRowIndex, j.row,
					log.FieldError, err)
				return nil
			}
			cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				p.logger.WarnContext(gctx, "receipt decode failed",
					log.FieldReceiptRef, j.ref,
					log.FieldRowIndex, j.row,
					log.FieldError, err)
				return nil
			}
			// Trust the decoded encoding over the extension: a mislabeled
			// file embedded under the wrong format fails the document.
			format := j.format
			switch name {
			case "png":
				format = PNG
			case "jpeg":
				format = JPEG
			}
			results[i] = Embedded{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}
			return nil
		})
	}
	// Workers swallow per-row errors, so Wait only propagates a panic-free
	// nil; it still blocks until every fetch has settled.
	_ = g.Wait()

	out := make(map[int]Embedded, len(jobs))
	for i, j := range jobs {
		out[j.row] = results[i]
	}
	return out, nil
}

// FailedMap marks every eligible row as failed. The report service uses it
// when the fetch capability itself is unusable, so compilation can still
// proceed with "failed to load" receipt cells.
func FailedMap(entries []core.LedgerEntry, maxBatch int) map[int]Embedded {
	out := make(map[int]Embedded)
	for i, e := range entries {
		if !e.HasReceipt() {
			continue
		}
		if _, ok := RasterFormat(e.ReceiptRef); !ok {
			continue
		}
		out[i] = Embedded{}
		if maxBatch > 0 && len(out) == maxBatch {
			break
		}
	}
	return out
}
