package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/jcondori/convoscraper/internal/textutil"
)

const publishMarker = "PUBLICADO EL"

// anchorStrategy searches the markup tree for text nodes matching the
// identifier heading pattern and ascends from each match until it reaches an
// element whose combined text also carries the publish-date marker. It works
// even when the page has no recognizable table or region structure.
// Containers are deduplicated so nested matches are processed once.
type anchorStrategy struct{}

func (anchorStrategy) Name() string { return "anchor" }

func (anchorStrategy) Locate(p *Page) []RawBlock {
	seen := make(map[*html.Node]bool)
	var blocks []RawBlock

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && reHeadingKeyword.MatchString(textutil.Fold(n.Data)) {
			container := ascendToContainer(n)
			if container != nil && !seen[container] {
				seen[container] = true
				blocks = append(blocks, RawBlock{Lines: flattenNode(container)})
			}
			return
		}
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.Root)
	return blocks
}

// ascendToContainer climbs from a heading text node to the nearest enclosing
// element whose text includes the publish-date marker. Climbing stops before
// body/html; a heading with no such container yields no candidate.
func ascendToContainer(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if cur.Data == "body" || cur.Data == "html" {
			return nil
		}
		if strings.Contains(textutil.Fold(nodeText(cur)), publishMarker) {
			return cur
		}
	}
	return nil
}
