package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcondori/convoscraper/internal/ai"
	"github.com/jcondori/convoscraper/internal/config"
	"github.com/jcondori/convoscraper/internal/crawl"
	"github.com/jcondori/convoscraper/internal/docs"
	"github.com/jcondori/convoscraper/internal/extract"
	"github.com/jcondori/convoscraper/internal/fetch"
	"github.com/jcondori/convoscraper/internal/logging"
	"github.com/jcondori/convoscraper/internal/notify"
	"github.com/jcondori/convoscraper/internal/snapshot"
	"github.com/jcondori/convoscraper/internal/tdr"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	defaults := config.Default()

	baseURL := flag.String("base-url", defaults.BaseURL, "Listing base URL (without .html suffix)")
	maxPages := flag.Int("max-pages", defaults.MaxPages, "Safety cap on pages visited per run")
	pageDelay := flag.Duration("page-delay", defaults.PageDelay, "Polite delay between page fetches")
	timeout := flag.Duration("timeout", defaults.HTTPTimeout, "HTTP timeout per request")
	workers := flag.Int("workers", defaults.Workers, "Concurrent attachment downloads per page")
	outputPath := flag.String("out", defaults.OutputPath, "Snapshot output path")
	attachmentsDir := flag.String("tdr-dir", defaults.AttachmentsDir, "Directory for downloaded documents")
	dumpDir := flag.String("dump-dir", "", "Optional directory for raw page dumps")
	maxBlockLen := flag.Int("max-block-len", defaults.MaxBlockLen, "Cap on extracted technical block length, in bytes")
	ocrLang := flag.String("ocr-lang", defaults.OCRLanguage, "Tesseract language code")

	geminiKey := flag.String("gemini-api-key", env("GEMINI_API_KEY", ""), "Gemini API key; empty disables summaries")
	geminiModel := flag.String("gemini-model", defaults.GeminiModel, "Gemini model name")

	smtpServer := flag.String("smtp-server", env("SMTP_SERVER", ""), "SMTP server address; empty disables email")
	smtpPort := flag.Int("smtp-port", defaults.SMTPPort, "SMTP server port")
	smtpUser := flag.String("smtp-user", env("SMTP_USER", ""), "SMTP username")
	smtpPass := flag.String("smtp-pass", env("SMTP_PASS", ""), "SMTP password or app password")
	toEmail := flag.String("to-email", env("TO_EMAIL", ""), "Digest recipient")
	fromEmail := flag.String("from-email", "", "Digest sender (default: smtp-user)")

	logLevel := flag.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	logEncoding := flag.String("log-encoding", defaults.LogEncoding, "Log encoding: console or json")
	flag.Parse()

	cfg := defaults
	cfg.BaseURL = *baseURL
	cfg.MaxPages = *maxPages
	cfg.PageDelay = *pageDelay
	cfg.HTTPTimeout = *timeout
	cfg.Workers = *workers
	cfg.OutputPath = *outputPath
	cfg.AttachmentsDir = *attachmentsDir
	cfg.DumpDir = *dumpDir
	cfg.MaxBlockLen = *maxBlockLen
	cfg.OCRLanguage = *ocrLang
	cfg.GeminiAPIKey = *geminiKey
	cfg.GeminiModel = *geminiModel
	cfg.SMTPServer = *smtpServer
	cfg.SMTPPort = *smtpPort
	cfg.SMTPUser = *smtpUser
	cfg.SMTPPass = *smtpPass
	cfg.ToEmail = *toEmail
	cfg.FromEmail = *fromEmail
	cfg.LogLevel = *logLevel
	cfg.LogEncoding = *logEncoding
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fetchOpts []fetch.Option
	if cfg.DumpDir != "" {
		fetchOpts = append(fetchOpts, fetch.WithDumpDir(cfg.DumpDir))
	}
	fetcher := fetch.New(cfg.BaseURL, cfg.UserAgent, cfg.HTTPTimeout, log, fetchOpts...)
	extractor := extract.New(log)
	resolver := docs.NewResolver(cfg.BaseURL, cfg.AttachmentPathHint, log)
	downloader := docs.NewDownloader(cfg.AttachmentsDir, cfg.UserAgent, cfg.HTTPTimeout, log)

	poppler := tdr.Poppler{}
	blocks := tdr.NewExtractor(poppler, poppler, tdr.Tesseract{Language: cfg.OCRLanguage}, cfg.MaxBlockLen, log)

	var summarizer crawl.Summarizer
	if cfg.GeminiAPIKey != "" {
		summarizer = ai.NewSummarizer(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	controller := crawl.NewController(
		fetcher, extractor, resolver, downloader, blocks, summarizer,
		cfg.MaxPages, cfg.PageDelay, cfg.Workers, log,
	)

	log.Infow("starting crawl", "base_url", cfg.BaseURL, "max_pages", cfg.MaxPages)
	anns, reason := controller.Run(ctx)
	log.Infow("crawl finished", "reason", string(reason), "collected", len(anns))

	// Best effort: whatever was collected before the stop condition still
	// gets written.
	snap := snapshot.Build(anns, fetcher.PageURL(1), cfg.BaseURL, time.Now())
	if err := snapshot.Write(cfg.OutputPath, snap); err != nil {
		log.Errorw("failed to write snapshot", "error", err)
		os.Exit(1)
	}
	log.Infow("snapshot written", "path", cfg.OutputPath, "total", snap.Metadata.Total)

	notify.Report(snap, cfg.OutputPath)
	notify.EmailDigest(snap, notify.EmailConfig{
		SMTPServer: cfg.SMTPServer,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPass,
		FromEmail:  cfg.FromEmail,
		ToEmail:    cfg.ToEmail,
		Enabled:    cfg.EmailEnabled(),
	}, log)
}
