package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Downloader persists attachments under a fixed directory, named after the
// final path segment of their URL. Collisions overwrite; the run is the unit
// of interest, not document history.
type Downloader struct {
	client    *http.Client
	dir       string
	userAgent string
	log       *zap.SugaredLogger
}

func NewDownloader(dir, userAgent string, timeout time.Duration, log *zap.SugaredLogger) *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		dir:       dir,
		userAgent: userAgent,
		log:       log,
	}
}

// Download fetches the document and returns the local path. Every failure
// mode (not found, transport error, disk error) comes back as an error; the
// caller treats absence identically regardless of cause.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received status %d for %s", resp.StatusCode, rawURL)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachments directory %s: %w", d.dir, err)
	}

	name := fileNameFromURL(rawURL)
	dest := filepath.Join(d.dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	d.log.Infow("downloaded attachment", "url", rawURL, "file", dest)
	return dest, nil
}

// fileNameFromURL takes the final path segment, falling back to a fixed name
// when the URL has no usable path.
func fileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "documento.pdf"
}
