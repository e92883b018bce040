/*
Package tdr extracts the technical-characteristics section from a downloaded
requirements document. The embedded text layer is tried first; optical
recognition of rasterized pages is the fallback for scanned documents. Both
stages search for the same data-driven heading markers.
*/
package tdr

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type Extractor struct {
	text    TextLayer
	raster  Rasterizer
	ocr     Recognizer
	markers MarkerSet
	maxLen  int
	log     *zap.SugaredLogger
}

func NewExtractor(text TextLayer, raster Rasterizer, ocr Recognizer, maxLen int, log *zap.SugaredLogger) *Extractor {
	return &Extractor{
		text:    text,
		raster:  raster,
		ocr:     ocr,
		markers: DefaultMarkers(),
		maxLen:  maxLen,
		log:     log,
	}
}

// Extract returns the technical block of the document at path, plus whether
// optical recognition actually ran. The flag stays false whenever the block
// came from embedded text or recognition never executed; it is true once the
// fallback ran, whether or not it found the section. An empty segment means
// no section was found.
func (e *Extractor) Extract(ctx context.Context, path string) (string, bool) {
	pages, err := e.text.PageCount(ctx, path)
	if err != nil {
		// Unreadable container: no fallback, recognition never ran.
		e.log.Warnw("document is unreadable", "path", path, "error", err)
		return "", false
	}

	if segment := e.embeddedText(ctx, path, pages); segment != "" {
		return segment, false
	}
	return e.opticalRecognition(ctx, path, pages)
}

// embeddedText concatenates the non-empty machine-encoded pages and searches
// them for the technical-block markers.
func (e *Extractor) embeddedText(ctx context.Context, path string, pages int) string {
	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		text, err := e.text.PageText(ctx, path, page)
		if err != nil {
			e.log.Warnw("failed to read embedded text", "path", path, "page", page, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return ""
	}
	return e.markers.Segment(sb.String(), e.maxLen)
}

// opticalRecognition rasterizes each page to a greyscale image, recognizes
// it, and searches the concatenated result. A page that fails to rasterize or
// recognize is logged and skipped, never aborting the document.
func (e *Extractor) opticalRecognition(ctx context.Context, path string, pages int) (string, bool) {
	ran := false
	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		image, err := e.raster.RasterizePage(ctx, path, page)
		if err != nil {
			e.log.Warnw("failed to rasterize page", "path", path, "page", page, "error", err)
			continue
		}
		text, err := e.ocr.RecognizeImage(ctx, image)
		removeRasterFile(image)
		ran = true
		if err != nil {
			e.log.Warnw("optical recognition failed", "path", path, "page", page, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	if !ran {
		// Rasterization never produced an image, so recognition never ran.
		return "", false
	}
	return e.markers.Segment(sb.String(), e.maxLen), true
}
