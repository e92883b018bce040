// Package config holds the run configuration for the scraper. Every value
// that used to be a script-level constant in earlier iterations lives here
// and is passed explicitly into the crawl controller.
package config

import (
	"fmt"
	"time"
)

const (
	DefaultBaseURL   = "https://www.ima.org.pe/adquisiciones-bienes-servicios-v2"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config is the full configuration of one scraper run.
type Config struct {
	BaseURL   string
	UserAgent string

	MaxPages    int
	PageDelay   time.Duration
	HTTPTimeout time.Duration
	Workers     int

	OutputPath     string
	AttachmentsDir string
	// DumpDir, when set, receives a copy of every fetched page for inspection.
	DumpDir string

	// AttachmentPathHint is the path fragment identifying the site's document
	// directory; links containing it are preferred attachment candidates.
	AttachmentPathHint string

	// MaxBlockLen caps the extracted technical block, in bytes of original text.
	MaxBlockLen int
	OCRLanguage string

	GeminiAPIKey string
	GeminiModel  string

	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string

	LogLevel    string
	LogEncoding string
}

// Default returns the configuration matching the production site.
func Default() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		UserAgent:          DefaultUserAgent,
		MaxPages:           30,
		PageDelay:          2 * time.Second,
		HTTPTimeout:        30 * time.Second,
		Workers:            4,
		OutputPath:         "data/convocatorias_vigentes.json",
		AttachmentsDir:     "data/tdr",
		AttachmentPathHint: "/archivos/",
		MaxBlockLen:        4000,
		OCRLanguage:        "spa",
		GeminiModel:        "gemini-2.0-flash",
		SMTPPort:           587,
		LogLevel:           "info",
		LogEncoding:        "console",
	}
}

// EmailEnabled reports whether SMTP settings are complete enough to send the
// end-of-run digest.
func (c Config) EmailEnabled() bool {
	return c.SMTPServer != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1, got %d", c.MaxPages)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.AttachmentsDir == "" {
		return fmt.Errorf("attachments directory is required")
	}
	return nil
}
