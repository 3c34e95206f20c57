package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inesa/internal/core"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bendahara/laporan", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("startDate") == "" || r.URL.Query().Get("endDate") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// Rows deliberately out of order to exercise the reorder.
		w.Write([]byte(`{"data":[
			{"id_pengeluaran":7,"tanggal":"10-06-2024 13:00","keterangan":"pembelian ATK","pengeluaran":250000,"nota":"nota-7.jpg","total_saldo":1250000},
			{"id_pemasukan":3,"tanggal":"03-06-2024 09:15","keterangan":"dana desa","pemasukan":"1500000.00","total_saldo":1500000}
		]}`))
	})
	mux.HandleFunc("/api/bendahara/laporan/saldo", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total":1250000}`))
	})
	mux.HandleFunc("/api/bendahara/laporan/pemasukan", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total":1500000}`))
	})
	mux.HandleFunc("/api/bendahara/laporan/pengeluaran", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total":250000}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testPeriod() core.ReportPeriod {
	return core.ReportPeriod{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC),
	}
}

func TestEntries(t *testing.T) {
	srv := testServer(t)
	c := NewClient(srv.URL+"/api/bendahara", "secret", 5*time.Second)

	entries, err := c.Entries(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	first := entries[0]
	if first.ID != "3" {
		t.Errorf("rows not reordered chronologically, first ID = %q", first.ID)
	}
	if first.Description != "dana desa" {
		t.Errorf("description = %q", first.Description)
	}
	if first.Income.Rupiah != 1_500_000 {
		t.Errorf("decimal income = %d, want 1500000", first.Income.Rupiah)
	}
	if got := first.Timestamp.Format(core.StorageTimeLayout); got != "03-06-2024 09:15" {
		t.Errorf("timestamp = %q", got)
	}

	second := entries[1]
	if second.ReceiptRef != "nota-7.jpg" {
		t.Errorf("receipt ref = %q", second.ReceiptRef)
	}
	if second.RunningBalance.Rupiah != 1_250_000 {
		t.Errorf("running balance = %d", second.RunningBalance.Rupiah)
	}
}

func TestSummary(t *testing.T) {
	srv := testServer(t)
	c := NewClient(srv.URL+"/api/bendahara", "secret", 5*time.Second)

	summary, err := c.Summary(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalIncome.Rupiah != 1_500_000 ||
		summary.TotalExpense.Rupiah != 250_000 ||
		summary.EndingBalance.Rupiah != 1_250_000 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestEntries_Unauthorized(t *testing.T) {
	srv := testServer(t)
	c := NewClient(srv.URL+"/api/bendahara", "wrong", 5*time.Second)

	if _, err := c.Entries(context.Background(), testPeriod()); err == nil {
		t.Fatal("want error on non-200 status")
	}
}

func TestEntries_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", 5*time.Second)
	if _, err := c.Entries(context.Background(), testPeriod()); err == nil {
		t.Fatal("want error on non-JSON body")
	}
}
