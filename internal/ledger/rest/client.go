// Package rest implements the ledger source backed by the treasury reporting
// API, the system of record for village transactions.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"inesa/internal/core"
	"inesa/internal/ledger"
)

var _ ledger.Source = (*Client)(nil)

// Client talks to the reporting endpoints:
//
//	GET {base}/laporan?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD  -> {data: [...]}
//	GET {base}/laporan/saldo|pemasukan|pengeluaran              -> {total: n}
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// wireEntry is one row of the {data: []} envelope. The backend sends income
// and expense rows through the same shape, with the unused ID field absent.
type wireEntry struct {
	IncomeID    json.Number `json:"id_pemasukan"`
	ExpenseID   json.Number `json:"id_pengeluaran"`
	Tanggal     string      `json:"tanggal"`
	Keterangan  string      `json:"keterangan"`
	Pemasukan   json.Number `json:"pemasukan"`
	Pengeluaran json.Number `json:"pengeluaran"`
	Nota        string      `json:"nota"`
	TotalSaldo  json.Number `json:"total_saldo"`
}

type listEnvelope struct {
	Data []wireEntry `json:"data"`
}

type totalEnvelope struct {
	Total json.Number `json:"total"`
}

func (c *Client) Entries(ctx context.Context, period core.ReportPeriod) ([]core.LedgerEntry, error) {
	query := url.Values{}
	query.Set("startDate", period.Start.Format(core.WireDateLayout))
	query.Set("endDate", period.End.Format(core.WireDateLayout))

	var envelope listEnvelope
	if err := c.get(ctx, "/laporan?"+query.Encode(), &envelope); err != nil {
		return nil, err
	}

	entries := make([]core.LedgerEntry, 0, len(envelope.Data))
	for _, w := range envelope.Data {
		entries = append(entries, w.toEntry())
	}
	// The backend delivers rows ordered, but the chronological contract is
	// ours to keep.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

func (c *Client) Summary(ctx context.Context, period core.ReportPeriod) (core.ReportSummary, error) {
	query := url.Values{}
	query.Set("startDate", period.Start.Format(core.WireDateLayout))
	query.Set("endDate", period.End.Format(core.WireDateLayout))
	suffix := "?" + query.Encode()

	var summary core.ReportSummary
	endpoints := []struct {
		path string
		dst  *core.Money
	}{
		{"/laporan/pemasukan", &summary.TotalIncome},
		{"/laporan/pengeluaran", &summary.TotalExpense},
		{"/laporan/saldo", &summary.EndingBalance},
	}
	for _, ep := range endpoints {
		var envelope totalEnvelope
		if err := c.get(ctx, ep.path+suffix, &envelope); err != nil {
			return core.ReportSummary{}, err
		}
		ep.dst.Rupiah = parseAmount(envelope.Total)
	}
	return summary, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (w wireEntry) toEntry() core.LedgerEntry {
	id := w.IncomeID.String()
	if id == "" {
		id = w.ExpenseID.String()
	}
	return core.LedgerEntry{
		ID:             id,
		Timestamp:      core.ParseStorageTime(w.Tanggal),
		Description:    w.Keterangan,
		Income:         core.Money{Rupiah: parseAmount(w.Pemasukan)},
		Expense:        core.Money{Rupiah: parseAmount(w.Pengeluaran)},
		RunningBalance: core.Money{Rupiah: parseAmount(w.TotalSaldo)},
		ReceiptRef:     strings.TrimSpace(w.Nota),
	}
}

// parseAmount tolerates both integer and decimal wire values; rupiah amounts
// carry no fractional part so decimals are truncated.
func parseAmount(n json.Number) int64 {
	if n.String() == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}
