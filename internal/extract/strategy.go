package extract

import "strings"

// RawBlock is one candidate announcement region, as trimmed text lines in
// document order. How the lines were delimited depends on the strategy that
// produced them; field parsing treats them uniformly.
type RawBlock struct {
	Lines []string
}

func (b RawBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}

// BoundaryStrategy locates announcement boundaries on a page. Strategies are
// tried in order of decreasing structural assumption because the site's
// markup has changed shape across revisions; the first one that yields at
// least one block wins.
type BoundaryStrategy interface {
	Name() string
	Locate(p *Page) []RawBlock
}
