package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"inesa/internal/core"
	"inesa/internal/report"
)

// parseRangeRequest reads the period selection from query parameters. An
// explicit startDate/endDate pair implies a custom range even without
// range=custom; the token defaults to the 7days preset otherwise.
func parseRangeRequest(r *http.Request) (report.RangeToken, report.CustomRange) {
	q := r.URL.Query()
	custom := report.CustomRange{
		Start: strings.TrimSpace(q.Get("startDate")),
		End:   strings.TrimSpace(q.Get("endDate")),
	}

	token := report.RangeToken(strings.TrimSpace(q.Get("range")))
	if token == "" {
		if custom.Start != "" || custom.End != "" {
			token = report.RangeCustom
		} else {
			token = report.Range7Days
		}
	}
	return token, custom
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes. The upstream ledger
// being unreachable is a gateway failure, not our fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
