/*
Package docs maps announcements to their technical-requirements documents and
downloads them. The announcement↔link pairing is positional: the i-th open
announcement on a page gets the i-th candidate link. That assumption holds
only while the site emits both lists in the same order; it is isolated here so
a key-based pairing can replace it without touching the rest of the pipeline.
*/
package docs

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jcondori/convoscraper/internal/types"
)

// Resolver finds attachment links on a listing page.
type Resolver struct {
	baseURL  string
	pathHint string
	log      *zap.SugaredLogger
}

func NewResolver(baseURL, pathHint string, log *zap.SugaredLogger) *Resolver {
	return &Resolver{baseURL: baseURL, pathHint: pathHint, log: log}
}

// Resolve attaches document URLs to the announcements, in page order. When
// there are fewer links than announcements, the trailing announcements are
// left without an attachment rather than guessed at.
func (r *Resolver) Resolve(anns []types.Announcement, content string) []types.Announcement {
	links := r.candidateLinks(content)
	for i := range anns {
		if i >= len(links) {
			break
		}
		anns[i].Attachment = &types.Attachment{SourceURL: links[i]}
	}
	if len(links) != len(anns) {
		r.log.Warnw("attachment links and announcements diverge, pairing positionally",
			"links", len(links), "announcements", len(anns))
	}
	return anns
}

// candidateLinks collects hrefs under the known document directory; if none
// match, any link ending in .pdf is accepted instead.
func (r *Resolver) candidateLinks(content string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		r.log.Warnw("failed to parse page for attachment links", "error", err)
		return nil
	}

	base, err := url.Parse(r.baseURL + "/")
	if err != nil {
		base = nil
	}

	var hinted, pdfs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		abs := resolveURL(base, href)
		if abs == "" {
			return
		}
		if r.pathHint != "" && strings.Contains(abs, r.pathHint) {
			hinted = append(hinted, abs)
		}
		if strings.HasSuffix(strings.ToLower(abs), ".pdf") {
			pdfs = append(pdfs, abs)
		}
	})

	if len(hinted) > 0 {
		return hinted
	}
	return pdfs
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
