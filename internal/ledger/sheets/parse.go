package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"inesa/internal/core"
)

// parseEntries converts a values matrix (as returned by the Sheets API) into
// ledger entries, keeping only rows whose timestamp falls inside the period.
// Treasurers hand-edit the sheet, so malformed amounts parse as zero and
// rows without a timestamp are skipped entirely.
func parseEntries(values [][]interface{}, period core.ReportPeriod) []core.LedgerEntry {
	var entries []core.LedgerEntry
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) == 0 || strings.TrimSpace(cols[0]) == "" {
			continue
		}
		ts := core.ParseStorageTime(cols[0])
		if ts.IsZero() || !period.Contains(ts) {
			continue
		}
		income := parseRupiah(safeGet(cols, 2))
		expense := parseRupiah(safeGet(cols, 3))
		entries = append(entries, core.LedgerEntry{
			Timestamp:      ts,
			Description:    strings.TrimSpace(safeGet(cols, 1)),
			Income:         core.Money{Rupiah: income},
			Expense:        core.Money{Rupiah: expense},
			RunningBalance: core.Money{Rupiah: parseRupiah(safeGet(cols, 4))},
			ReceiptRef:     strings.TrimSpace(safeGet(cols, 5)),
		})
	}
	return entries
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseRupiah reads a whole-rupiah amount from a sheet cell, tolerating the
// "Rp" prefix, dot thousands separators and a decimal comma tail.
func parseRupiah(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ".", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
