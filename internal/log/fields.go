package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldRangeToken  = "range"
	FieldPeriodStart = "period_start"
	FieldPeriodEnd   = "period_end"
	FieldEntryCount  = "entries"
	FieldReceiptRef  = "receipt_ref"
	FieldRowIndex    = "row_index"
	FieldFormat      = "format"
	FieldFilename    = "filename"
	FieldByteSize    = "bytes"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentReport   = "report"
	ComponentPipeline = "image_pipeline"
	ComponentExport   = "export"
	ComponentAMQP     = "amqp"
	ComponentBackend  = "backend"
)
