package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Ledger source selection
	LedgerBackend string

	// REST ledger source
	LedgerBaseURL string
	LedgerToken   string

	// Receipt image store
	UploadBaseURL string

	// SQLite ledger source
	SQLiteDBPath string

	// Google Sheets ledger source
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP (optional report-generated events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Image embed pipeline
	PDFImageBatch  int
	XLSXImageBatch int
	FetchWorkers   int
	FetchTimeout   time.Duration

	// Running-balance handling: trust, validate or recompute
	BalanceMode string

	// Printed report identity
	ReportTitle   string
	OrgLabel      string
	FooterCaption string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "rest"),

		LedgerBaseURL: getEnv("LEDGER_BASE_URL", "https://bontomanai.inesa.id/api/bendahara"),
		LedgerToken:   getEnv("LEDGER_TOKEN", ""),

		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "https://bontomanai.inesa.id/api/bendahara/uploads/"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Laporan"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "inesa"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_events"),

		PDFImageBatch:  getEnvInt("PDF_IMAGE_BATCH", 30),
		XLSXImageBatch: getEnvInt("XLSX_IMAGE_BATCH", 500),
		FetchWorkers:   getEnvInt("FETCH_WORKERS", 8),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		BalanceMode: getEnv("BALANCE_MODE", "validate"),

		ReportTitle:   getEnv("REPORT_TITLE", "Laporan Keuangan Desa"),
		OrgLabel:      getEnv("ORG_LABEL", "Desa Bontomanai, Kec. Rumbia, Kab. Jeneponto"),
		FooterCaption: getEnv("FOOTER_CAPTION", "Sistem Keuangan Desa Bontomanai"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate ledger backend
	validBackends := []string{"rest", "sqlite", "sheets", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.LedgerBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	// Validate REST configuration if backend is rest
	if c.LedgerBackend == "rest" {
		if c.LedgerBaseURL == "" {
			errors = append(errors, "ledger base URL cannot be empty when using rest backend")
		} else if parsed, err := url.Parse(c.LedgerBaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid ledger base URL '%s'", c.LedgerBaseURL))
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.LedgerBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.LedgerBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}

	// Validate upload base URL when set
	if c.UploadBaseURL != "" {
		if parsed, err := url.Parse(c.UploadBaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid upload base URL '%s'", c.UploadBaseURL))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate pipeline limits
	if c.PDFImageBatch < 0 {
		errors = append(errors, fmt.Sprintf("invalid PDF image batch %d: must not be negative", c.PDFImageBatch))
	}
	if c.XLSXImageBatch < 0 {
		errors = append(errors, fmt.Sprintf("invalid XLSX image batch %d: must not be negative", c.XLSXImageBatch))
	}
	if c.FetchWorkers < 1 {
		errors = append(errors, fmt.Sprintf("invalid fetch workers %d: must be at least 1", c.FetchWorkers))
	} else if c.FetchWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid fetch workers %d: must be at most 64", c.FetchWorkers))
	}
	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}

	// Validate balance mode
	switch c.BalanceMode {
	case "trust", "validate", "recompute":
	default:
		errors = append(errors, fmt.Sprintf("invalid balance mode '%s': must be one of [trust validate recompute]", c.BalanceMode))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
