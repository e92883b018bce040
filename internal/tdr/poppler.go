package tdr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// TextLayer reads the machine-encoded text of a document, one page at a time.
type TextLayer interface {
	PageCount(ctx context.Context, path string) (int, error)
	PageText(ctx context.Context, path string, page int) (string, error)
}

// Rasterizer renders one document page as a greyscale image on disk.
type Rasterizer interface {
	RasterizePage(ctx context.Context, path string, page int) (string, error)
}

// Poppler implements TextLayer and Rasterizer on top of the poppler-utils
// binaries (pdfinfo, pdftotext, pdftoppm).
type Poppler struct{}

var rePdfInfoPages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)

func (Poppler) PageCount(ctx context.Context, path string) (int, error) {
	out, err := runCommand(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed for %s: %w", path, err)
	}
	m := rePdfInfoPages.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("pdfinfo output for %s has no page count", path)
	}
	return strconv.Atoi(m[1])
}

func (Poppler) PageText(ctx context.Context, path string, page int) (string, error) {
	p := strconv.Itoa(page)
	out, err := runCommand(ctx, "pdftotext", "-f", p, "-l", p, "-raw", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s page %d: %w", path, page, err)
	}
	return out, nil
}

// RasterizePage renders the page at 200 dpi into a temporary greyscale PNG.
// The caller removes the file when done.
func (Poppler) RasterizePage(ctx context.Context, path string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "convoscraper_ocr_*")
	if err != nil {
		return "", fmt.Errorf("failed to create raster temp dir: %w", err)
	}
	p := strconv.Itoa(page)
	prefix := filepath.Join(dir, "page")
	if _, err := runCommand(ctx, "pdftoppm", "-f", p, "-l", p, "-r", "200", "-gray", "-png", path, prefix); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("pdftoppm failed for %s page %d: %w", path, page, err)
	}

	// pdftoppm pads the page number in the output name depending on the
	// document length, so glob instead of guessing the width.
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(matches) == 0 {
		os.RemoveAll(dir)
		return "", fmt.Errorf("pdftoppm produced no image for %s page %d", path, page)
	}
	return matches[0], nil
}

// removeRasterFile deletes a rasterized page image and its directory when
// that directory is left empty.
func removeRasterFile(path string) {
	os.Remove(path)
	os.Remove(filepath.Dir(path))
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %v (%s)", name, err, msg)
		}
		return "", fmt.Errorf("%s: %v", name, err)
	}
	return out.String(), nil
}
