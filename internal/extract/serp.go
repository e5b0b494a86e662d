// internal/extract/serp.go
package extract

import (
	"regexp"
	"strings"
)

// Search result pages render the real signal as display text: citation
// breadcrumbs like "Instagram · janedoe" or "x.com › user", and @handles in
// result titles. These never appear as literal profile hrefs, so they get
// their own parsing pass.

var serpInternalLinkMarkers = []string{
	"/search?", "/preferences", "/imgres?", "accounts.google.com",
	"policies.google.com", "support.google.com", "ssl.gstatic.com", "gstatic.com",
	"googleadservices.com", "googlesyndication.com", "googletagmanager.com",
	"doubleclick.net", "googleusercontent.com", "googleapis.com",
	"google.com", "google.co.in", "google.co", "google.net", "google.org",
	"/webhp", "/advanced_search", "w3.org", "schema.org",
}

func isSearchInternalLink(href string) bool {
	lower := strings.ToLower(href)
	for _, marker := range serpInternalLinkMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var (
	citeInstagramRe = regexp.MustCompile(`(?i)Instagram\s*[·•]\s*([a-zA-Z0-9_.]{1,30})`)
	citeTikTokRe    = regexp.MustCompile(`(?i)TikTok\s*[·•]\s*@?([a-zA-Z0-9_.]{1,24})`)
	citeFacebookRe  = regexp.MustCompile(`(?i)Facebook\s*[·•]\s*([a-zA-Z0-9_.]{1,50})`)
	citeTwitterRe   = regexp.MustCompile(`(?i)(?:twitter|x)\.com\s*[›>]\s*([a-zA-Z0-9_]{1,15})`)
	citeYouTubeRe   = regexp.MustCompile(`(?i)youtube\.com\s*[›>]\s*@?([a-zA-Z0-9_-]{1,50})`)
	citeGenericRe   = regexp.MustCompile(`(?i)^((?:www\.)?(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,})\s*[›>]\s*([a-zA-Z0-9_@.-]+)`)
	titleHandleRe   = regexp.MustCompile(`@([a-zA-Z0-9_]{1,30})`)

	serpLinkedInInRe = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#]+)`)
	serpLinkedInCoRe = regexp.MustCompile(`(?i)linkedin\.com/company/([^/?#]+)`)
)

// Score bases for citation-derived candidates: a named breadcrumb is a
// stronger signal than a generic domain › path one.
const (
	scoreCiteNamed   = 5
	scoreCiteGeneric = 4
)

// collectFromCitations recovers profile identities from citation breadcrumbs
// and titled @handles on a search results page.
func (e *SocialEngine) collectFromCitations(page *PageDocument, candidates *candidateSet, pageHost string) {
	for _, text := range page.SelectTexts("cite", "span.VuuXrf", "div.byrV5b") {
		e.addCitation(text, candidates, pageHost)
	}

	// @handles in result titles, platform resolved from the page's cite text.
	cites := page.SelectTexts("cite", "span.VuuXrf")
	citeBlob := strings.ToLower(strings.Join(cites, " "))
	for _, title := range page.SelectTexts("h3", "div.LC20lb") {
		for _, m := range titleHandleRe.FindAllStringSubmatch(title, -1) {
			handle := m[1]
			switch {
			case strings.Contains(citeBlob, "instagram"):
				e.addCandidate("https://www.instagram.com/"+handle, candidates, pageHost, scoreCiteGeneric)
			case strings.Contains(citeBlob, "twitter"), strings.Contains(citeBlob, "x.com"):
				e.addCandidate("https://x.com/"+handle, candidates, pageHost, scoreCiteGeneric)
			case strings.Contains(citeBlob, "tiktok"):
				e.addCandidate("https://www.tiktok.com/@"+handle, candidates, pageHost, scoreCiteGeneric)
			}
		}
	}
}

func (e *SocialEngine) addCitation(text string, candidates *candidateSet, pageHost string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if m := citeInstagramRe.FindStringSubmatch(text); m != nil {
		e.addCandidate("https://www.instagram.com/"+m[1], candidates, pageHost, scoreCiteNamed)
		return
	}
	if m := citeTikTokRe.FindStringSubmatch(text); m != nil {
		e.addCandidate("https://www.tiktok.com/@"+m[1], candidates, pageHost, scoreCiteNamed)
		return
	}
	if m := citeFacebookRe.FindStringSubmatch(text); m != nil {
		e.addCandidate("https://www.facebook.com/"+m[1], candidates, pageHost, scoreCiteNamed)
		return
	}
	if m := citeTwitterRe.FindStringSubmatch(text); m != nil {
		if !isReservedHandle(m[1], "explore", "home", "search", "i") {
			e.addCandidate("https://x.com/"+m[1], candidates, pageHost, scoreCiteNamed)
		}
		return
	}
	if m := citeYouTubeRe.FindStringSubmatch(text); m != nil {
		if !isReservedHandle(m[1], "watch", "shorts", "playlist") {
			e.addCandidate("https://www.youtube.com/@"+m[1], candidates, pageHost, scoreCiteNamed)
		}
		return
	}

	// domain.com › path breadcrumbs for platforms rendered without a name.
	if m := citeGenericRe.FindStringSubmatch(text); m != nil {
		domain := strings.ToLower(m[1])
		path := m[2]
		switch {
		case strings.Contains(domain, "instagram.com"):
			if !isReservedHandle(path, "p", "reel", "stories", "explore") {
				e.addCandidate("https://www.instagram.com/"+path, candidates, pageHost, scoreCiteGeneric)
			}
		case strings.Contains(domain, "twitter.com"), strings.Contains(domain, "x.com"):
			if !isReservedHandle(path, "explore", "search", "i", "home") {
				e.addCandidate("https://x.com/"+path, candidates, pageHost, scoreCiteGeneric)
			}
		case strings.Contains(domain, "tiktok.com"):
			handle := path
			if !strings.HasPrefix(handle, "@") {
				handle = "@" + handle
			}
			e.addCandidate("https://www.tiktok.com/"+handle, candidates, pageHost, scoreCiteGeneric)
		case strings.Contains(domain, "facebook.com"):
			if !isReservedHandle(path, "share", "sharer", "watch") {
				e.addCandidate("https://www.facebook.com/"+path, candidates, pageHost, scoreCiteGeneric)
			}
		}
	}
}

func isReservedHandle(handle string, reserved ...string) bool {
	lower := strings.ToLower(handle)
	for _, r := range reserved {
		if lower == r {
			return true
		}
	}
	return false
}

// CollectSERPLinkedIn gathers canonical LinkedIn profile and company URLs
// from search result anchors, redirect wrappers decoded. Returns unique
// URLs in first-seen order; empty on non-search pages.
func CollectSERPLinkedIn(page *PageDocument) []string {
	if page == nil || !page.IsSearchResults() {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, selector := range []string{"div.yuRUbf a", `a[jsname="UWckNb"]`, "div.g a[href]"} {
		for _, href := range page.AttrValues(selector, "href") {
			if strings.Contains(href, "/url?") {
				if decoded := decodeRedirectTarget(href); decoded != "" {
					href = decoded
				}
			}
			if m := serpLinkedInInRe.FindStringSubmatch(href); m != nil {
				add("https://www.linkedin.com/in/" + strings.ToLower(m[1]))
				continue
			}
			if m := serpLinkedInCoRe.FindStringSubmatch(href); m != nil {
				add("https://www.linkedin.com/company/" + strings.ToLower(m[1]))
			}
		}
	}
	return out
}
