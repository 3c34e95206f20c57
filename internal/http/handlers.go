package http

import (
	"fmt"
	"net/http"

	"inesa/internal/core"
	"inesa/internal/log"
	"inesa/internal/report"
)

type entryResponse struct {
	ID          string `json:"id,omitempty"`
	Tanggal     string `json:"tanggal"`
	Keterangan  string `json:"keterangan"`
	Pemasukan   int64  `json:"pemasukan"`
	Pengeluaran int64  `json:"pengeluaran"`
	Saldo       int64  `json:"saldo"`
	Nota        string `json:"nota,omitempty"`
}

type summaryResponse struct {
	TotalPemasukan   int64 `json:"total_pemasukan"`
	TotalPengeluaran int64 `json:"total_pengeluaran"`
	SaldoAkhir       int64 `json:"saldo_akhir"`
}

type periodResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type reportResponse struct {
	Data    []entryResponse `json:"data"`
	Summary summaryResponse `json:"summary"`
	Period  periodResponse  `json:"period"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	token, custom := parseRangeRequest(r)

	data, err := s.service.Data(r.Context(), token, custom)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "report data request failed",
			log.FieldRangeToken, string(token),
			log.FieldError, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(data))
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, report.FormatPDF)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, report.FormatXLSX)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, format report.Format) {
	token, custom := parseRangeRequest(r)

	artifact, err := s.service.Compile(r.Context(), token, custom, format)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "report export failed",
			log.FieldRangeToken, string(token),
			log.FieldFormat, string(format),
			log.FieldError, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func toReportResponse(data core.ReportData) reportResponse {
	entries := make([]entryResponse, 0, len(data.Entries))
	for _, e := range data.Entries {
		tanggal := ""
		if !e.Timestamp.IsZero() {
			tanggal = e.Timestamp.Format(core.StorageTimeLayout)
		}
		entries = append(entries, entryResponse{
			ID:          e.ID,
			Tanggal:     tanggal,
			Keterangan:  e.Description,
			Pemasukan:   e.Income.Rupiah,
			Pengeluaran: e.Expense.Rupiah,
			Saldo:       e.RunningBalance.Rupiah,
			Nota:        e.ReceiptRef,
		})
	}
	return reportResponse{
		Data: entries,
		Summary: summaryResponse{
			TotalPemasukan:   data.Summary.TotalIncome.Rupiah,
			TotalPengeluaran: data.Summary.TotalExpense.Rupiah,
			SaldoAkhir:       data.Summary.EndingBalance.Rupiah,
		},
		Period: periodResponse{
			Start: data.Period.Start.Format(core.WireDateLayout),
			End:   data.Period.End.Format(core.WireDateLayout),
			Label: data.Period.Label(),
		},
	}
}
