// internal/extract/page.go
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageDocument wraps a parsed page snapshot and gives engines the small
// surface they need: visible text, raw markup, anchors with context, and
// meta tag lookup. Engines never touch the document directly.
type PageDocument struct {
	doc     *goquery.Document
	raw     string
	pageURL *url.URL
	host    string
}

// PageAnchor is one anchor element with the context used for scoring.
type PageAnchor struct {
	Href      string
	Text      string
	AriaLabel string
	Title     string
	// InSocialContainer is true when the anchor sits inside a footer or a
	// container whose class or id mentions "social", "follow" or "connect".
	InSocialContainer bool
	// SurroundingText is a short excerpt of the enclosing section, used to
	// detect contact-section context for website candidates.
	SurroundingText string
}

// NewPageDocument parses a page snapshot. pageURL may be empty when the
// caller has no address for the markup (e.g. stdin input).
func NewPageDocument(html, pageURL string) (*PageDocument, error) {
	html = Truncate(html, MaxHTMLScan)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	pd := &PageDocument{
		doc: doc,
		raw: html,
	}
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
			pd.pageURL = u
			pd.host = strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
		}
	}
	return pd, nil
}

// VisibleText returns the rendered text of the page body with script and
// style contents removed, capped at the text scan ceiling.
func (p *PageDocument) VisibleText() string {
	body := p.doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return Truncate(body.Text(), MaxTextScan)
}

// RawMarkup returns the capped raw HTML of the snapshot.
func (p *PageDocument) RawMarkup() string {
	return p.raw
}

// Hostname returns the page's hostname, lowercased with any www. prefix
// removed, or "" when the snapshot has no URL.
func (p *PageDocument) Hostname() string {
	return p.host
}

// URL returns the page URL the snapshot was taken from, or "".
func (p *PageDocument) URL() string {
	if p.pageURL == nil {
		return ""
	}
	return p.pageURL.String()
}

// IsSearchResults reports whether the page is a recognized search engine
// results page, which enables redirect decoding and citation parsing.
func (p *PageDocument) IsSearchResults() bool {
	return strings.Contains(p.host, "google.") ||
		strings.Contains(p.host, "bing.") ||
		strings.Contains(p.host, "duckduckgo.")
}

// ResolveURL turns href into an absolute URL against the page URL. Fragment
// and javascript pseudo-links resolve to "".
func (p *PageDocument) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if p.pageURL == nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.pageURL.ResolveReference(ref).String()
}

// Anchors returns every anchor element carrying an href, with the context
// fields populated.
func (p *PageDocument) Anchors() []PageAnchor {
	var anchors []PageAnchor
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		a := PageAnchor{
			Href: href,
			Text: strings.TrimSpace(s.Text()),
		}
		if v, ok := s.Attr("aria-label"); ok {
			a.AriaLabel = v
		}
		if v, ok := s.Attr("title"); ok {
			a.Title = v
		}
		a.InSocialContainer = inSocialContainer(s)
		if section := s.Closest("section, aside, div"); section.Length() > 0 {
			a.SurroundingText = Truncate(strings.ToLower(section.Text()), 500)
		}
		anchors = append(anchors, a)
	})
	return anchors
}

func inSocialContainer(s *goquery.Selection) bool {
	for node := s.Parent(); node.Length() > 0; node = node.Parent() {
		if goquery.NodeName(node) == "footer" {
			return true
		}
		class, _ := node.Attr("class")
		id, _ := node.Attr("id")
		marker := strings.ToLower(class + " " + id)
		if strings.Contains(marker, "social") ||
			strings.Contains(marker, "follow") ||
			strings.Contains(marker, "connect") ||
			strings.Contains(marker, "footer") {
			return true
		}
	}
	return false
}

// MetaContents returns the content attribute of every meta tag matching one
// of the given name or property values.
func (p *PageDocument) MetaContents(names ...string) []string {
	var out []string
	for _, name := range names {
		sel := fmt.Sprintf(`meta[name=%q], meta[property=%q]`, name, name)
		p.doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
				out = append(out, content)
			}
		})
	}
	return out
}

// StructuredData returns the bodies of application/ld+json script blocks.
func (p *PageDocument) StructuredData() []string {
	var out []string
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// SelectTexts returns the text of elements matching each selector in order.
func (p *PageDocument) SelectTexts(selectors ...string) []string {
	var out []string
	for _, sel := range selectors {
		p.doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				out = append(out, text)
			}
		})
	}
	return out
}

// FirstText returns the first non-empty text among the selector fallbacks,
// tried in order. Missing selectors yield "".
func (p *PageDocument) FirstText(selectors ...string) string {
	for _, sel := range selectors {
		found := ""
		p.doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := strings.TrimSpace(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// AttrValues returns values of the given attribute on elements matching the
// selector.
func (p *PageDocument) AttrValues(selector, attr string) []string {
	var out []string
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok && v != "" {
			out = append(out, v)
		}
	})
	return out
}
