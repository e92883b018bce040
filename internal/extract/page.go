package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jcondori/convoscraper/internal/textutil"
)

// Page is one parsed listing page, exposed both as a markup tree (for the
// structural and anchor strategies) and as a flattened line stream (for the
// textual-segmentation strategy).
type Page struct {
	Doc   *goquery.Document
	Root  *html.Node
	Lines []string
}

func NewPage(content string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}
	if len(doc.Selection.Nodes) == 0 {
		return nil, fmt.Errorf("parsed page has no root node")
	}
	root := doc.Selection.Nodes[0]
	return &Page{Doc: doc, Root: root, Lines: flattenNode(root)}, nil
}

// blockElements start a new line when flattening markup to text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

// flattenNode renders the subtree as trimmed, non-empty text lines, breaking
// at block-level elements.
func flattenNode(root *html.Node) []string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		if line := textutil.CollapseSpaces(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}
	walk(root)
	flush()
	return lines
}

// nodeText concatenates every text descendant of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
