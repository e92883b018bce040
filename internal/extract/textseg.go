package extract

import (
	"strings"

	"github.com/jcondori/convoscraper/internal/textutil"
)

// Region markers for the line-oriented fallback. The site has shipped several
// labels for the open-tenders section over the years, so these are lookup
// tables rather than single strings.
var (
	regionStartMarkers = []string{
		"CONVOCATORIAS VIGENTES",
		"CONVOCATORIAS EN CURSO",
		"ADQUISICIONES DE BIENES Y SERVICIOS",
	}
	regionEndMarkers = []string{
		"PAGINA ANTERIOR",
		"PAG. ANTERIOR",
		"<< ANTERIOR",
	}
)

func containsAny(folded string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

// textSegmentStrategy flattens the page to lines, bounds the region between a
// current-announcements marker and a previous-page marker (or end of
// content), and splits it into blocks at each identifier-bearing heading.
type textSegmentStrategy struct{}

func (textSegmentStrategy) Name() string { return "textseg" }

func (textSegmentStrategy) Locate(p *Page) []RawBlock {
	start := -1
	for i, line := range p.Lines {
		if containsAny(textutil.Fold(line), regionStartMarkers) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(p.Lines)
	for i := start; i < len(p.Lines); i++ {
		if containsAny(textutil.Fold(p.Lines[i]), regionEndMarkers) {
			end = i
			break
		}
	}

	var blocks []RawBlock
	var cur []string
	for _, line := range p.Lines[start:end] {
		if reHeadingKeyword.MatchString(textutil.Fold(line)) {
			if len(cur) > 0 {
				blocks = append(blocks, RawBlock{Lines: cur})
			}
			cur = []string{line}
			continue
		}
		if len(cur) > 0 {
			cur = append(cur, line)
		}
	}
	if len(cur) > 0 {
		blocks = append(blocks, RawBlock{Lines: cur})
	}
	return blocks
}
