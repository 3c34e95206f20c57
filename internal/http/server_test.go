package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inesa/internal/core"
	"inesa/internal/export/pdf"
	"inesa/internal/export/xlsx"
	"inesa/internal/ledger/memory"
	"inesa/internal/report"
)

func testService() *report.Service {
	store := memory.NewStore(
		core.LedgerEntry{
			ID:             "1",
			Timestamp:      time.Date(2024, time.June, 3, 9, 15, 0, 0, time.UTC),
			Description:    "dana desa",
			Income:         core.Money{Rupiah: 1_500_000},
			RunningBalance: core.Money{Rupiah: 1_500_000},
		},
		core.LedgerEntry{
			ID:             "2",
			Timestamp:      time.Date(2024, time.June, 10, 13, 0, 0, 0, time.UTC),
			Description:    "pembelian ATK",
			Expense:        core.Money{Rupiah: 250_000},
			RunningBalance: core.Money{Rupiah: 1_250_000},
		},
	)
	return report.NewService(report.ServiceOptions{
		Source:         store,
		BalanceMode:    report.BalanceValidate,
		PDF:            pdf.NewCompiler("Laporan Keuangan Desa", "Desa Bontomanai", "Sistem Keuangan", nil),
		XLSX:           xlsx.NewCompiler("Laporan Keuangan Desa", "Desa Bontomanai", nil),
		PDFImageBatch:  30,
		XLSXImageBatch: 500,
		FetchWorkers:   2,
		Now: func() time.Time {
			return time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)
		},
	})
}

func testHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(":0", testService(), nil)
	srv := httptest.NewServer(s.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/laporan?startDate=2024-06-01&endDate=2024-06-30")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			Tanggal     string `json:"tanggal"`
			Keterangan  string `json:"keterangan"`
			Pemasukan   int64  `json:"pemasukan"`
			Pengeluaran int64  `json:"pengeluaran"`
			Saldo       int64  `json:"saldo"`
		} `json:"data"`
		Summary struct {
			TotalPemasukan   int64 `json:"total_pemasukan"`
			TotalPengeluaran int64 `json:"total_pengeluaran"`
			SaldoAkhir       int64 `json:"saldo_akhir"`
		} `json:"summary"`
		Period struct {
			Start string `json:"start"`
			End   string `json:"end"`
			Label string `json:"label"`
		} `json:"period"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(body.Data) != 2 {
		t.Fatalf("data rows = %d, want 2", len(body.Data))
	}
	if body.Data[0].Keterangan != "dana desa" || body.Data[0].Tanggal != "03-06-2024 09:15" {
		t.Errorf("first row = %+v", body.Data[0])
	}
	if body.Summary.TotalPemasukan != 1_500_000 || body.Summary.SaldoAkhir != 1_250_000 {
		t.Errorf("summary = %+v", body.Summary)
	}
	if body.Period.Label != "1 Juni 2024 - 30 Juni 2024" {
		t.Errorf("period label = %q", body.Period.Label)
	}
}

func TestReportEndpoint_DefaultRange(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/laporan")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestReportEndpoint_InvalidCustomRange(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/laporan?startDate=2024-06-30&endDate=2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Error("error body missing")
	}
}

func TestExportPDF(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/laporan/export/pdf?range=1month")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "laporan-keuangan-desa.pdf") {
		t.Errorf("content disposition = %q", cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestExportXLSX(t *testing.T) {
	srv := testHTTPServer(t)

	resp, err := http.Get(srv.URL + "/api/laporan/export/xlsx?range=1month")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "laporan-keuangan.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("body is not a zip-based workbook")
	}
}
