package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jcondori/convoscraper/internal/textutil"
)

// tableStrategy locates the listing table whose header carries both the
// description and deadline columns; each data row becomes one block with one
// line per cell.
type tableStrategy struct{}

func (tableStrategy) Name() string { return "table" }

func (tableStrategy) Locate(p *Page) []RawBlock {
	var blocks []RawBlock
	p.Doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		text := textutil.Fold(tbl.Text())
		if !strings.Contains(text, "DESCRIPCION") || !strings.Contains(text, "PLAZO") {
			return true
		}
		tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 3 {
				return
			}
			var lines []string
			cells.Each(func(_ int, cell *goquery.Selection) {
				if line := textutil.CollapseSpaces(cell.Text()); line != "" {
					lines = append(lines, line)
				}
			})
			if len(lines) > 0 {
				blocks = append(blocks, RawBlock{Lines: lines})
			}
		})
		return false
	})
	return blocks
}
