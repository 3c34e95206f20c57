// Package pdf compiles the report into the printable A4-landscape document.
package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	mcore "github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"inesa/internal/core"
	"inesa/internal/export"
	"inesa/internal/images"
	"inesa/internal/log"
)

const (
	// Filename is the attachment name of the compiled document.
	Filename    = "laporan-keuangan-desa.pdf"
	contentType = "application/pdf"

	textRowHeight  = 7.0
	imageRowHeight = 18.0
)

// Grid widths of the six transaction columns (maroto 12-column grid).
var columnGrid = [6]int{2, 3, 2, 2, 1, 2}

// Compiler renders the paged document. Header and footer repeat on every
// page; the transaction table flows across page breaks.
type Compiler struct {
	title         string
	orgLabel      string
	footerCaption string
	logger        *log.Logger
}

func NewCompiler(title, orgLabel, footerCaption string, logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Compiler{
		title:         title,
		orgLabel:      orgLabel,
		footerCaption: footerCaption,
		logger:        logger.WithComponent(log.ComponentExport),
	}
}

// Compile builds the document. It never returns a partial artifact: any
// layout or generation failure surfaces as core.ErrCompilation.
func (c *Compiler) Compile(ctx context.Context, in export.Input) (export.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return export.Artifact{}, fmt.Errorf("%w: %v", core.ErrCompilation, err)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithBottomMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Halaman {current} dari {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(c.headerRows(in.Report.Period)...); err != nil {
		return export.Artifact{}, fmt.Errorf("%w: register header: %v", core.ErrCompilation, err)
	}
	if err := m.RegisterFooter(c.footerRows(in.GeneratedAt)...); err != nil {
		return export.Artifact{}, fmt.Errorf("%w: register footer: %v", core.ErrCompilation, err)
	}

	c.addSummary(m, in.Report.Summary)
	c.addTransactionTable(m, in)
	c.addSignatureBlock(m, in.GeneratedAt)

	doc, err := m.Generate()
	if err != nil {
		return export.Artifact{}, fmt.Errorf("%w: %v", core.ErrCompilation, err)
	}

	data := doc.GetBytes()
	c.logger.InfoContext(ctx, "compiled pdf report",
		log.FieldFilename, Filename,
		log.FieldEntryCount, len(in.Report.Entries),
		log.FieldByteSize, len(data))

	return export.Artifact{Filename: Filename, ContentType: contentType, Data: data}, nil
}

func (c *Compiler) headerRows(period core.ReportPeriod) []mcore.Row {
	return []mcore.Row{
		row.New(8).Add(
			text.NewCol(12, c.title, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Center,
			}),
		),
		row.New(6).Add(
			text.NewCol(12, c.orgLabel, props.Text{
				Size:  10,
				Align: align.Center,
			}),
		),
		row.New(6).Add(
			text.NewCol(12, "Periode: "+period.Label(), props.Text{
				Size:  10,
				Align: align.Center,
			}),
		),
		row.New(4).Add(line.NewCol(12)),
	}
}

func (c *Compiler) footerRows(generatedAt time.Time) []mcore.Row {
	return []mcore.Row{
		row.New(3).Add(line.NewCol(12)),
		row.New(4).Add(
			text.NewCol(6, c.footerCaption, props.Text{
				Size:  8,
				Align: align.Left,
			}),
			text.NewCol(6, "Dicetak: "+core.FormatDisplayTime(generatedAt), props.Text{
				Size:  8,
				Align: align.Right,
			}),
		),
	}
}

func (c *Compiler) addSummary(m mcore.Maroto, summary core.ReportSummary) {
	rows := []struct {
		label string
		value core.Money
	}{
		{"Total Pemasukan", summary.TotalIncome},
		{"Total Pengeluaran", summary.TotalExpense},
		{"Saldo Akhir", summary.EndingBalance},
	}
	for _, r := range rows {
		m.AddRow(6,
			text.NewCol(3, r.label, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.NewCol(3, r.value.Format(), props.Text{Size: 10}),
			col.New(6),
		)
	}
	m.AddRow(4)
}

func (c *Compiler) addTransactionTable(m mcore.Maroto, in export.Input) {
	headers := [6]string{"Tanggal", "Keterangan", "Pemasukan", "Pengeluaran", "Nota", "Saldo"}
	headerCols := make([]mcore.Col, 0, len(headers))
	for i, h := range headers {
		headerCols = append(headerCols, text.NewCol(columnGrid[i], h, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))
	}
	m.AddRow(7, headerCols...)
	m.AddRow(2, line.NewCol(12))

	if len(in.Report.Entries) == 0 {
		m.AddRow(10,
			text.NewCol(12, "Tidak ada transaksi untuk periode ini", props.Text{
				Size:  10,
				Align: align.Center,
			}),
		)
		return
	}

	for i, entry := range in.Report.Entries {
		state, emb := export.ClassifyReceipt(entry, in.Images, i)
		m.AddRows(transactionRow(entry, state, emb))
	}
}

func transactionRow(entry core.LedgerEntry, state export.ReceiptState, emb images.Embedded) mcore.Row {
	height := textRowHeight
	var receiptCol mcore.Col
	if state == export.ReceiptEmbedded {
		height = imageRowHeight
		receiptCol = col.New(columnGrid[4]).Add(
			image.NewFromBytes(emb.Data, marotoExtension(emb.Format), props.Rect{
				Center:  true,
				Percent: 85,
			}),
		)
	} else {
		receiptCol = text.NewCol(columnGrid[4], state.Label(), props.Text{
			Size:  8,
			Align: align.Center,
		})
	}

	income, expense := amountCells(entry)

	return row.New(height).Add(
		text.NewCol(columnGrid[0], core.FormatDisplayTime(entry.Timestamp), props.Text{Size: 8}),
		text.NewCol(columnGrid[1], entry.Description, props.Text{Size: 8}),
		text.NewCol(columnGrid[2], income, props.Text{Size: 8, Align: align.Right}),
		text.NewCol(columnGrid[3], expense, props.Text{Size: 8, Align: align.Right}),
		receiptCol,
		text.NewCol(columnGrid[5], entry.RunningBalance.Format(), props.Text{Size: 8, Align: align.Right}),
	)
}

// amountCells renders the income and expense columns. A zero amount stays
// blank opposite the non-zero one; a row with neither amount still shows the
// zero in the income column.
func amountCells(entry core.LedgerEntry) (income, expense string) {
	if entry.Income.Rupiah != 0 || entry.Expense.IsZero() {
		income = entry.Income.Format()
	}
	if entry.Expense.Rupiah != 0 {
		expense = entry.Expense.Format()
	}
	return income, expense
}

func (c *Compiler) addSignatureBlock(m mcore.Maroto, generatedAt time.Time) {
	m.AddRow(8)
	m.AddRow(5,
		col.New(7),
		text.NewCol(5, "Bontomanai, "+core.FormatLongDate(generatedAt), props.Text{
			Size:  9,
			Align: align.Center,
		}),
	)
	m.AddRow(5,
		text.NewCol(5, "Mengetahui,", props.Text{Size: 9, Align: align.Center}),
		col.New(2),
		text.NewCol(5, "Bendahara Desa", props.Text{Size: 9, Align: align.Center}),
	)
	m.AddRow(5,
		text.NewCol(5, "Kepala Desa", props.Text{Size: 9, Align: align.Center}),
		col.New(7),
	)
	m.AddRow(18)
	m.AddRow(5,
		text.NewCol(5, "(................................)", props.Text{Size: 9, Align: align.Center}),
		col.New(2),
		text.NewCol(5, "(................................)", props.Text{Size: 9, Align: align.Center}),
	)
}

func marotoExtension(f images.Format) extension.Type {
	if f == images.JPEG {
		return extension.Jpg
	}
	return extension.Png
}
