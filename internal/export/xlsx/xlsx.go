// Package xlsx compiles the report into a spreadsheet with inline receipt
// thumbnails.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"inesa/internal/core"
	"inesa/internal/export"
	"inesa/internal/images"
	"inesa/internal/log"
)

const (
	// Filename is the attachment name of the compiled workbook.
	Filename    = "laporan-keuangan.xlsx"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Laporan Keuangan"

	rupiahNumFmt = `"Rp"#,##0`

	// Thumbnail bounds and padding in pixels; row heights are set in points
	// (1 px = 0.75 pt at 96 DPI).
	thumbMaxWidthPx  = 96
	thumbMaxHeightPx = 72
	thumbPaddingPx   = 4
	pxToPoints       = 0.75

	defaultRowHeightPts = 15.0
)

// Widths of columns A-F in Excel character units.
var columnWidths = [6]float64{20, 30, 15, 15, 15, 15}

// notaColumn is the 1-based index of the receipt column (E).
const notaColumn = 5

type Compiler struct {
	title    string
	orgLabel string
	logger   *log.Logger
}

func NewCompiler(title, orgLabel string, logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Compiler{
		title:    title,
		orgLabel: orgLabel,
		logger:   logger.WithComponent(log.ComponentExport),
	}
}

// Compile builds the workbook. Any sheet-construction failure surfaces as
// core.ErrCompilation with no partial artifact.
func (c *Compiler) Compile(ctx context.Context, in export.Input) (export.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return export.Artifact{}, fmt.Errorf("%w: %v", core.ErrCompilation, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := c.buildSheet(f, in); err != nil {
		return export.Artifact{}, fmt.Errorf("%w: %v", core.ErrCompilation, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return export.Artifact{}, fmt.Errorf("%w: %v", core.ErrCompilation, err)
	}

	data := buf.Bytes()
	c.logger.InfoContext(ctx, "compiled xlsx report",
		log.FieldFilename, Filename,
		log.FieldEntryCount, len(in.Report.Entries),
		log.FieldByteSize, len(data))

	return export.Artifact{Filename: Filename, ContentType: contentType, Data: data}, nil
}

func (c *Compiler) buildSheet(f *excelize.File, in export.Input) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return err
		}
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return err
	}

	if err := c.addTitles(f, styles, in.Report.Period); err != nil {
		return err
	}
	if err := addSummary(f, styles, in.Report.Summary); err != nil {
		return err
	}
	return addTransactionTable(f, styles, in)
}

// styleSet holds the style IDs used across the sheet.
type styleSet struct {
	title    int
	subtitle int
	header   int
	rupiah   int
	label    int
	text     int
	failed   int
	skipped  int
	external int
	empty    int
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	numFmt := rupiahNumFmt

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5597"}},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.rupiah, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return s, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.failed, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "C00000", Italic: true},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.skipped, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "808080", Italic: true},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.external, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "2F5597"},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.empty, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	return s, nil
}

func (c *Compiler) addTitles(f *excelize.File, styles styleSet, period core.ReportPeriod) error {
	titles := []struct {
		row   int
		value string
		style int
	}{
		{1, c.title, styles.title},
		{2, c.orgLabel, styles.subtitle},
		{3, "Periode: " + period.Label(), styles.subtitle},
	}
	for _, t := range titles {
		start := fmt.Sprintf("A%d", t.row)
		end := fmt.Sprintf("F%d", t.row)
		if err := f.MergeCell(sheetName, start, end); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, start, t.value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, start, end, t.style); err != nil {
			return err
		}
	}
	return nil
}

func addSummary(f *excelize.File, styles styleSet, summary core.ReportSummary) error {
	rows := []struct {
		row   int
		label string
		value core.Money
	}{
		{5, "Total Pemasukan", summary.TotalIncome},
		{6, "Total Pengeluaran", summary.TotalExpense},
		{7, "Saldo Akhir", summary.EndingBalance},
	}
	for _, r := range rows {
		labelCell := fmt.Sprintf("A%d", r.row)
		valueCell := fmt.Sprintf("B%d", r.row)
		if err := f.SetCellValue(sheetName, labelCell, r.label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, labelCell, labelCell, styles.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, valueCell, r.value.Rupiah); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, valueCell, valueCell, styles.rupiah); err != nil {
			return err
		}
	}
	return nil
}

const headerRow = 9

func addTransactionTable(f *excelize.File, styles styleSet, in export.Input) error {
	headers := [6]string{"Tanggal", "Keterangan", "Pemasukan", "Pengeluaran", "Nota", "Saldo"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("F%d", headerRow), styles.header); err != nil {
		return err
	}

	if len(in.Report.Entries) == 0 {
		row := headerRow + 1
		start := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, start, fmt.Sprintf("F%d", row)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, start, "Tidak ada transaksi untuk periode ini"); err != nil {
			return err
		}
		return f.SetCellStyle(sheetName, start, start, styles.empty)
	}

	for i, entry := range in.Report.Entries {
		row := headerRow + 1 + i
		if err := writeEntryRow(f, styles, row, entry, in.Images, i); err != nil {
			return err
		}
	}
	return nil
}

func writeEntryRow(f *excelize.File, styles styleSet, row int, entry core.LedgerEntry, embedded map[int]images.Embedded, idx int) error {
	type cell struct {
		col   int
		value any
		style int
	}
	cells := []cell{
		{1, core.FormatDisplayTime(entry.Timestamp), styles.text},
		{2, entry.Description, styles.text},
		{6, entry.RunningBalance.Rupiah, styles.rupiah},
	}
	// A zero amount stays blank opposite the non-zero one; a row with
	// neither amount still carries the zero in the income column.
	if entry.Income.Rupiah != 0 || entry.Expense.IsZero() {
		cells = append(cells, cell{3, entry.Income.Rupiah, styles.rupiah})
	}
	if entry.Expense.Rupiah != 0 {
		cells = append(cells, cell{4, entry.Expense.Rupiah, styles.rupiah})
	}

	for _, c := range cells {
		name, err := excelize.CoordinatesToCellName(c.col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, name, c.value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, name, name, c.style); err != nil {
			return err
		}
	}

	notaCell, err := excelize.CoordinatesToCellName(notaColumn, row)
	if err != nil {
		return err
	}

	state, emb := export.ClassifyReceipt(entry, embedded, idx)
	if state == export.ReceiptEmbedded {
		return embedThumbnail(f, notaCell, row, emb)
	}

	if label := state.Label(); label != "" {
		if err := f.SetCellValue(sheetName, notaCell, label); err != nil {
			return err
		}
	}
	style := styles.text
	switch state {
	case export.ReceiptFailed:
		style = styles.failed
	case export.ReceiptSkipped:
		style = styles.skipped
	case export.ReceiptExternal:
		style = styles.external
	case export.ReceiptNone:
		style = styles.empty
	}
	return f.SetCellStyle(sheetName, notaCell, notaCell, style)
}

// thumbnailLayout is the placement of a receipt picture inside its cell:
// the scale against the thumbnail bounds, the centering offsets in pixels
// and the row height in points.
type thumbnailLayout struct {
	scale     float64
	offsetX   int
	offsetY   int
	heightPts float64
}

// layoutThumbnail scales the image into the thumbnail bounds, grows the row
// to fit it plus padding and centers it against the row height actually
// used, which may be the default when the thumbnail is shorter than it.
func layoutThumbnail(width, height int) thumbnailLayout {
	scale := 1.0
	if width > 0 && height > 0 {
		sw := float64(thumbMaxWidthPx) / float64(width)
		sh := float64(thumbMaxHeightPx) / float64(height)
		scale = min(sw, sh, 1.0)
	}
	targetW := float64(width) * scale
	targetH := float64(height) * scale

	colPx := columnPixelWidth(columnWidths[notaColumn-1])
	offsetX := int((colPx - targetW) / 2)
	if offsetX < 0 {
		offsetX = 0
	}

	heightPts := (targetH + 2*thumbPaddingPx) * pxToPoints
	if heightPts < defaultRowHeightPts {
		heightPts = defaultRowHeightPts
	}
	rowPx := heightPts / pxToPoints
	offsetY := int((rowPx - targetH) / 2)
	if offsetY < 0 {
		offsetY = 0
	}

	return thumbnailLayout{scale: scale, offsetX: offsetX, offsetY: offsetY, heightPts: heightPts}
}

// embedThumbnail anchors the picture to the receipt cell, scaled to the
// thumbnail bounds and centered via pixel offsets.
func embedThumbnail(f *excelize.File, cell string, row int, emb images.Embedded) error {
	layout := layoutThumbnail(emb.Width, emb.Height)
	if err := f.SetRowHeight(sheetName, row, layout.heightPts); err != nil {
		return err
	}

	return f.AddPictureFromBytes(sheetName, cell, &excelize.Picture{
		Extension: pictureExtension(emb.Format),
		File:      emb.Data,
		Format: &excelize.GraphicOptions{
			OffsetX:     layout.offsetX,
			OffsetY:     layout.offsetY,
			ScaleX:      layout.scale,
			ScaleY:      layout.scale,
			Positioning: "oneCell",
		},
	})
}

// columnPixelWidth converts an Excel character-unit column width to pixels.
func columnPixelWidth(width float64) float64 {
	return width*7 + 5
}

func pictureExtension(f images.Format) string {
	if f == images.JPEG {
		return ".jpg"
	}
	return ".png"
}
