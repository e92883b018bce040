/*
Package extract turns listing-page HTML into structured announcements. The
site's markup has been unstable across revisions, so announcement boundaries
are located by competing strategies (table, textual segmentation, anchor
search) tried in order of decreasing structural assumption; field parsing is
shared by all of them. Only announcements whose status resolves to VIGENTE
leave this package.
*/
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jcondori/convoscraper/internal/textutil"
	"github.com/jcondori/convoscraper/internal/types"
)

// Listing markers used to decide whether a page belongs to the listing at
// all: the table column headers of the current layout plus the section and
// heading labels of older layouts. A page with none of them looks
// structurally unrelated and ends the crawl.
var listingMarkers = []string{
	"DESCRIPCION",
	"PLAZO",
	"CONVOCATORIAS VIGENTES",
	"SOLICITUD DE COTIZACION",
}

type Extractor struct {
	strategies []BoundaryStrategy
	log        *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Extractor {
	return &Extractor{
		strategies: []BoundaryStrategy{tableStrategy{}, textSegmentStrategy{}, anchorStrategy{}},
		log:        log,
	}
}

// Extract parses the page content and returns the open announcements found
// on it, plus whether the page carried any listing marker at all.
func (e *Extractor) Extract(content string, page int) (open []types.Announcement, hasMarkers bool) {
	p, err := NewPage(content)
	if err != nil {
		e.log.Warnw("failed to parse page", "page", page, "error", err)
		return nil, false
	}

	folded := textutil.Fold(strings.Join(p.Lines, "\n"))
	for _, m := range listingMarkers {
		if strings.Contains(folded, m) {
			hasMarkers = true
			break
		}
	}

	var blocks []RawBlock
	for _, s := range e.strategies {
		if blocks = s.Locate(p); len(blocks) > 0 {
			e.log.Debugw("boundary strategy matched", "page", page, "strategy", s.Name(), "blocks", len(blocks))
			break
		}
	}

	for _, b := range blocks {
		ann := ParseBlock(b, page)
		if ann.Status != types.StatusOpen {
			continue
		}
		open = append(open, ann)
	}
	return open, hasMarkers
}
