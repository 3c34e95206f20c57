// Package export defines the contract shared by the report compilers and the
// receipt-cell rendering rules both artifact formats follow.
package export

import (
	"context"
	"time"

	"inesa/internal/core"
	"inesa/internal/images"
)

// Artifact is a finished downloadable report file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Input is everything a compiler needs. Images maps an entry index to its
// embedded thumbnail; indexes absent from the map were either ineligible or
// truncated by the batch cap.
type Input struct {
	Report      core.ReportData
	Images      map[int]images.Embedded
	GeneratedAt time.Time
}

// Compiler turns aggregated report data into one artifact format. A failed
// compilation returns no partial artifact.
type Compiler interface {
	Compile(ctx context.Context, in Input) (Artifact, error)
}

// ReceiptState classifies how a transaction row's receipt column renders.
type ReceiptState int

const (
	// ReceiptNone means the row has no receipt reference.
	ReceiptNone ReceiptState = iota
	// ReceiptEmbedded means a decoded thumbnail is available.
	ReceiptEmbedded
	// ReceiptFailed means the fetch or decode of a raster receipt failed.
	ReceiptFailed
	// ReceiptSkipped means the raster receipt was eligible but fell beyond
	// the batch cap, so no fetch was attempted.
	ReceiptSkipped
	// ReceiptExternal means the reference is not an embeddable raster file.
	ReceiptExternal
)

// Fallback labels printed in place of a thumbnail.
const (
	LabelNoReceipt = "Tidak Ada"
	LabelFailed    = "Gagal memuat"
	LabelSkipped   = "Tidak diproses"
	LabelExternal  = "File Eksternal"
)

// Label returns the printed fallback text for non-embedded states.
func (s ReceiptState) Label() string {
	switch s {
	case ReceiptFailed:
		return LabelFailed
	case ReceiptSkipped:
		return LabelSkipped
	case ReceiptExternal:
		return LabelExternal
	case ReceiptEmbedded:
		return ""
	default:
		return LabelNoReceipt
	}
}

// ClassifyReceipt decides the receipt cell state for the entry at index row.
// The embedded map distinguishes "attempted and failed" (present, nil data)
// from "never attempted" (absent).
func ClassifyReceipt(entry core.LedgerEntry, embedded map[int]images.Embedded, row int) (ReceiptState, images.Embedded) {
	if !entry.HasReceipt() {
		return ReceiptNone, images.Embedded{}
	}
	if _, ok := images.RasterFormat(entry.ReceiptRef); !ok {
		return ReceiptExternal, images.Embedded{}
	}
	emb, ok := embedded[row]
	if !ok {
		return ReceiptSkipped, images.Embedded{}
	}
	if emb.Failed() {
		return ReceiptFailed, images.Embedded{}
	}
	return ReceiptEmbedded, emb
}
