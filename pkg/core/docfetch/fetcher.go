// Package docfetch retrieves a filing document and renders it into the
// three shapes the extraction pipeline consumes: line-separated page
// text, absolute image URLs, and flattened per-table texts.
package docfetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FetchFunc retrieves one URL. Production code passes
// (*edgar.Client).FetchURL so document fetches share the archive rate
// limiter.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Document is the rendered form of one filing document.
type Document struct {
	// Text is the whole-page text, one text node per line, trimmed.
	Text string
	// ImageURLs are the page's image sources resolved absolute against
	// the page URL.
	ImageURLs []string
	// TableTexts holds each non-empty table's text flattened onto one
	// line.
	TableTexts []string
}

// Fetcher renders filing documents.
type Fetcher struct {
	fetch FetchFunc
}

func NewFetcher(fetch FetchFunc) *Fetcher {
	return &Fetcher{fetch: fetch}
}

// Fetch retrieves and renders the document at pageURL. A transport
// failure (including non-2xx) returns a nil Document; callers treat the
// document as absent and move on.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Document, error) {
	body, err := f.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid document URL %q: %w", pageURL, err)
	}

	out := &Document{Text: blockText(doc.Selection)}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		out.ImageURLs = append(out.ImageURLs, resolved.String())
	})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		// Join on text-node boundaries; Selection.Text would run
		// adjacent cells together.
		var cells []string
		for _, node := range table.Nodes {
			collectText(node, &cells)
		}
		flat := strings.Join(strings.Fields(strings.Join(cells, " ")), " ")
		if flat == "" {
			return
		}
		out.TableTexts = append(out.TableTexts, flat)
	})

	return out, nil
}

// blockText renders the selection's text with one trimmed text node per
// line, so block boundaries survive instead of words running together
// the way Selection.Text concatenates them.
func blockText(sel *goquery.Selection) string {
	var lines []string
	for _, node := range sel.Nodes {
		collectText(node, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*lines = append(*lines, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}
