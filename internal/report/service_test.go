package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"inesa/internal/core"
	"inesa/internal/export"
	"inesa/internal/images"
)

type fakeCompiler struct {
	artifact export.Artifact
	err      error
	lastIn   export.Input
	calls    int
}

func (f *fakeCompiler) Compile(_ context.Context, in export.Input) (export.Artifact, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return export.Artifact{}, f.err
	}
	return f.artifact, nil
}

type fakeNotifier struct {
	notes []Notification
	err   error
}

func (f *fakeNotifier) ReportGenerated(_ context.Context, n Notification) error {
	f.notes = append(f.notes, n)
	return f.err
}

func serviceUnderTest(src *stubSource, fetcher images.Fetcher, notifier Notifier) (*Service, *fakeCompiler, *fakeCompiler) {
	pdf := &fakeCompiler{artifact: export.Artifact{Filename: "out.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}
	xlsx := &fakeCompiler{artifact: export.Artifact{Filename: "out.xlsx", Data: []byte("PK")}}
	svc := NewService(ServiceOptions{
		Source:         src,
		BalanceMode:    BalanceTrust,
		Fetcher:        fetcher,
		PDF:            pdf,
		XLSX:           xlsx,
		Notifier:       notifier,
		PDFImageBatch:  30,
		XLSXImageBatch: 500,
		FetchWorkers:   2,
		Now: func() time.Time {
			return time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)
		},
	})
	return svc, pdf, xlsx
}

func TestService_Data(t *testing.T) {
	src := &stubSource{entries: chainEntries(), summary: core.ReportSummary{EndingBalance: core.Money{Rupiah: 1_300_000}}}
	svc, _, _ := serviceUnderTest(src, nil, nil)

	data, err := svc.Data(context.Background(), Range7Days, CustomRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(data.Entries))
	}
	wantStart := time.Date(2024, time.June, 8, 0, 0, 0, 0, time.UTC)
	if !data.Period.Start.Equal(wantStart) {
		t.Errorf("period start = %v, want %v", data.Period.Start, wantStart)
	}
}

func TestService_Data_InvalidCustomRange(t *testing.T) {
	svc, _, _ := serviceUnderTest(&stubSource{}, nil, nil)

	_, err := svc.Data(context.Background(), RangeCustom, CustomRange{Start: "2024-06-30", End: "2024-06-01"})
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange, got %v", err)
	}
}

func TestService_Compile_PicksCompilerByFormat(t *testing.T) {
	src := &stubSource{entries: chainEntries()}
	svc, pdf, xlsx := serviceUnderTest(src, nil, nil)

	art, err := svc.Compile(context.Background(), Range1Month, CustomRange{}, FormatXLSX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Filename != "out.xlsx" {
		t.Errorf("filename = %q", art.Filename)
	}
	if xlsx.calls != 1 || pdf.calls != 0 {
		t.Errorf("compiler calls pdf=%d xlsx=%d, want 0/1", pdf.calls, xlsx.calls)
	}
}

func TestService_Compile_UnsupportedFormat(t *testing.T) {
	svc, _, _ := serviceUnderTest(&stubSource{}, nil, nil)

	_, err := svc.Compile(context.Background(), Range7Days, CustomRange{}, Format("docx"))
	if err == nil {
		t.Fatal("want error for unsupported format")
	}
}

func TestService_Compile_NilFetcherDegrades(t *testing.T) {
	entries := chainEntries()
	entries[0].ReceiptRef = "nota.png"
	src := &stubSource{entries: entries}
	svc, pdf, _ := serviceUnderTest(src, nil, nil)

	_, err := svc.Compile(context.Background(), Range7Days, CustomRange{}, FormatPDF)
	if err != nil {
		t.Fatalf("missing fetch capability must not fail compilation: %v", err)
	}
	emb, ok := pdf.lastIn.Images[0]
	if !ok {
		t.Fatal("eligible row missing from degraded image map")
	}
	if !emb.Failed() {
		t.Error("degraded row should be marked failed")
	}
}

func TestService_Compile_NotifiesOnSuccess(t *testing.T) {
	src := &stubSource{entries: chainEntries()}
	notifier := &fakeNotifier{}
	svc, _, _ := serviceUnderTest(src, nil, notifier)

	_, err := svc.Compile(context.Background(), Range7Days, CustomRange{}, FormatPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.notes))
	}
	n := notifier.notes[0]
	if n.Format != FormatPDF || n.Filename != "out.pdf" || n.EntryCount != 2 {
		t.Errorf("notification = %+v", n)
	}
}

func TestService_Compile_NotifierFailureIsNonFatal(t *testing.T) {
	src := &stubSource{entries: chainEntries()}
	notifier := &fakeNotifier{err: errors.New("broker down")}
	svc, _, _ := serviceUnderTest(src, nil, notifier)

	if _, err := svc.Compile(context.Background(), Range7Days, CustomRange{}, FormatPDF); err != nil {
		t.Fatalf("notifier failure must not fail the report: %v", err)
	}
}

func TestService_Compile_SourceFailure(t *testing.T) {
	src := &stubSource{entriesErr: errors.New("refused")}
	notifier := &fakeNotifier{}
	svc, _, _ := serviceUnderTest(src, nil, notifier)

	_, err := svc.Compile(context.Background(), Range7Days, CustomRange{}, FormatPDF)
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("want ErrDataUnavailable, got %v", err)
	}
	if len(notifier.notes) != 0 {
		t.Error("failed compilation must not publish a notification")
	}
}
