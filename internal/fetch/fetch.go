/*
Package fetch retrieves listing pages from the procurement site. A 404 is the
normal end-of-pagination signal and is reported as ErrNotFound; anything else
that goes wrong on the wire is a plain error. Page bytes are decoded with
charset sniffing because the site is known to misdeclare its encoding.
*/
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrNotFound signals that the requested page does not exist. The crawl
// controller treats it as the end of the listing, not a failure.
var ErrNotFound = errors.New("page not found")

// Fetcher downloads listing pages.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	dumpDir   string
	log       *zap.SugaredLogger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDumpDir makes the fetcher write a copy of every fetched page into dir.
func WithDumpDir(dir string) Option {
	return func(f *Fetcher) { f.dumpDir = dir }
}

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func New(baseURL, userAgent string, timeout time.Duration, log *zap.SugaredLogger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
		log:       log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// PageURL maps a 1-based page index to its address: page 1 is the section
// root, later pages use the s---N.html pattern.
func (f *Fetcher) PageURL(page int) string {
	if page <= 1 {
		return f.baseURL + ".html"
	}
	return fmt.Sprintf("%s/s---%d.html", f.baseURL, page)
}

// Fetch retrieves and decodes the page with the given 1-based index.
func (f *Fetcher) Fetch(ctx context.Context, page int) (string, error) {
	url := f.PageURL(page)
	f.log.Infow("fetching page", "page", page, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		f.log.Infow("page not found, end of pagination", "page", page)
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received status %d from %s", resp.StatusCode, url)
	}

	// Decode from the actual byte content; the declared charset is not
	// trustworthy on this site.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to detect charset for %s: %w", url, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	if f.dumpDir != "" {
		f.dumpPage(page, body)
	}
	return string(body), nil
}

func (f *Fetcher) dumpPage(page int, body []byte) {
	if err := os.MkdirAll(f.dumpDir, 0o755); err != nil {
		f.log.Warnw("failed to create dump directory", "dir", f.dumpDir, "error", err)
		return
	}
	path := filepath.Join(f.dumpDir, fmt.Sprintf("page_%02d.html", page))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		f.log.Warnw("failed to dump page", "path", path, "error", err)
	}
}
