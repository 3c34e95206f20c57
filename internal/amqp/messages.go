package amqp

import (
	"encoding/json"
	"time"

	"inesa/internal/core"
	"inesa/internal/report"
)

// ReportGeneratedMessage announces a compiled report artifact. It carries
// metadata only; consumers that need the artifact re-request it over HTTP.
type ReportGeneratedMessage struct {
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	EntryCount  int       `json:"entry_count"`
	ByteSize    int       `json:"byte_size"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReportGeneratedMessage converts a service notification to its wire form.
func NewReportGeneratedMessage(n report.Notification) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		Format:      string(n.Format),
		Filename:    n.Filename,
		PeriodStart: n.Period.Start.Format(core.WireDateLayout),
		PeriodEnd:   n.Period.End.Format(core.WireDateLayout),
		EntryCount:  n.EntryCount,
		ByteSize:    n.ByteSize,
		GeneratedAt: n.GeneratedAt,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON creates a message from JSON bytes.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
