// internal/extract/social.go
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// trackingParams are stripped from every URL before classification.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "igshid", "si", "ref", "ref_src", "ref_url",
	"source", "medium", "campaign", "yclid", "msclkid", "dclid",
	"_ga", "_gid", "mc_cid", "mc_eid", "feature", "app", "src",
	"__a", "hl", "locale", "lang",
}

var (
	websiteKeywords = []string{
		"website", "portfolio", "official", "home", "visit", "my site",
		"our site", "homepage", "main site", "company site",
	}
	contactKeywords = []string{
		"contact", "email us", "call us", "about", "connect", "reach us", "get in touch",
	}
	followHintRe  = regexp.MustCompile(`(?i)follow|connect|dm|message|social`)
	trailingURLRe = regexp.MustCompile(`['"<>)\]]+$`)
)

// Score contributions. All scoring is additive over the same canonical key
// across passes, which yields a ranking without a second ranking stage.
const (
	scoreAnchorBase   = 0
	scoreTextBase     = 1
	scoreMetaBase     = 2
	scorePatternBonus = 4
	scoreRepeatBonus  = 2
	scoreFooterBonus  = 5
)

// SocialResult is the outcome of one social link extraction pass.
type SocialResult struct {
	Links      []types.SocialLink
	ByPlatform map[types.Platform][]string
	BestLinks  []types.SocialLink
}

type socialCandidate struct {
	platform types.Platform
	url      string
	username string
	score    int
}

// candidateSet keeps candidates keyed by canonical identity with stable
// insertion order.
type candidateSet struct {
	byKey map[string]*socialCandidate
	order []string
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byKey: make(map[string]*socialCandidate)}
}

func (cs *candidateSet) get(key string) (*socialCandidate, bool) {
	c, ok := cs.byKey[key]
	return c, ok
}

func (cs *candidateSet) put(key string, c *socialCandidate) {
	if _, ok := cs.byKey[key]; !ok {
		cs.order = append(cs.order, key)
	}
	cs.byKey[key] = c
}

// SocialEngine classifies every URL found on a page into a platform or a
// website candidate, canonicalizes it, scores it across passes and selects
// one best link per platform.
type SocialEngine struct {
	rules  []PlatformRule
	hints  map[types.Platform][]string
	logger utils.Logger
}

// NewSocialEngine builds an engine over the given rule table. A nil table
// falls back to the built-in rules.
func NewSocialEngine(rules []PlatformRule, logger utils.Logger) *SocialEngine {
	if len(rules) == 0 {
		rules = PlatformRules()
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &SocialEngine{
		rules:  rules,
		hints:  PlatformKeywordHints(rules),
		logger: logger.WithField("engine", "social"),
	}
}

// Extract runs all passes over page and returns grouped, scored results.
func (e *SocialEngine) Extract(page *PageDocument) SocialResult {
	result := SocialResult{ByPlatform: make(map[types.Platform][]string)}
	if page == nil {
		return result
	}

	pageHost := page.Hostname()
	isSERP := page.IsSearchResults()
	candidates := newCandidateSet()
	anchors := page.Anchors()

	// Pass 1: anchor hrefs.
	for _, a := range anchors {
		href := a.Href
		if isSERP {
			if strings.HasPrefix(href, "/url?") || strings.Contains(href, "google.com/url?") {
				decoded := decodeRedirectTarget(href)
				if decoded == "" || !strings.HasPrefix(decoded, "http") {
					continue
				}
				href = decoded
			}
			if isSearchInternalLink(href) {
				continue
			}
		}
		if cleaned := e.CleanURL(page.ResolveURL(href)); cleaned != "" {
			e.addCandidate(cleaned, candidates, pageHost, scoreAnchorBase)
		}
	}

	// Search pages render identities as citation text, not hrefs.
	if isSERP {
		e.collectFromCitations(page, candidates, pageHost)
	}

	// Pass 2: URLs in visible text.
	for _, raw := range FindURLsLike(page.VisibleText()) {
		if cleaned := e.CleanURL(raw); cleaned != "" {
			e.addCandidate(cleaned, candidates, pageHost, scoreTextBase)
		}
	}

	// Pass 3: meta tags.
	for _, content := range page.MetaContents("og:url", "og:see_also", "twitter:url") {
		if !strings.HasPrefix(content, "http") {
			continue
		}
		if cleaned := e.CleanURL(content); cleaned != "" {
			e.addCandidate(cleaned, candidates, pageHost, scoreMetaBase)
		}
	}

	// Pass 4: footer/social container bonus for already-seen candidates.
	for _, a := range anchors {
		if !a.InSocialContainer {
			continue
		}
		if c := e.lookupCandidate(candidates, page, a.Href, pageHost); c != nil {
			c.score += scoreFooterBonus
		}
	}

	// Pass 5: anchor text and aria-label keyword bonuses.
	for _, a := range anchors {
		e.scoreAnchorKeywords(candidates, page, a, pageHost)
	}

	e.buildResult(candidates, &result)
	e.logger.Debugf("classified %d candidates into %d platforms",
		len(candidates.order), len(result.ByPlatform))
	return result
}

// addCandidate classifies url and records or re-scores the candidate.
// Platforms are mutually exclusive per URL: the first accepting platform
// wins and website detection only sees URLs no platform claimed.
func (e *SocialEngine) addCandidate(url string, candidates *candidateSet, pageHost string, baseScore int) {
	for _, rule := range e.rules {
		if matchesAny(rule.Reject, url) {
			continue
		}
		if !matchesAny(rule.Accept, url) {
			continue
		}
		canonical, username, ok := rule.Canonicalize(url)
		if !ok || len(username) < rule.MinUsernameLen {
			continue
		}
		if _, isReserved := rule.Reserved[strings.ToLower(username)]; isReserved {
			continue
		}

		key := strings.ToLower(canonical)
		if c, exists := candidates.get(key); exists {
			c.score += scoreRepeatBonus
		} else {
			candidates.put(key, &socialCandidate{
				platform: rule.Platform,
				url:      canonical,
				username: username,
				score:    baseScore + scorePatternBonus,
			})
		}
		return
	}

	cleanURL, key, host, score, ok := classifyWebsite(url, pageHost, baseScore)
	if !ok {
		return
	}
	if c, exists := candidates.get(key); exists {
		// Websites do not accumulate repeats; the best-shaped URL wins.
		if score > c.score {
			c.score = score
			c.url = cleanURL
		}
	} else {
		candidates.put(key, &socialCandidate{
			platform: types.PlatformWebsite,
			url:      cleanURL,
			username: host,
			score:    score,
		})
	}
}

// lookupCandidate finds the existing candidate an anchor href refers to,
// first by canonical key, then by hostname for website candidates.
func (e *SocialEngine) lookupCandidate(candidates *candidateSet, page *PageDocument, href, pageHost string) *socialCandidate {
	cleaned := e.CleanURL(page.ResolveURL(href))
	if cleaned == "" {
		return nil
	}
	for _, rule := range e.rules {
		if matchesAny(rule.Reject, cleaned) || !matchesAny(rule.Accept, cleaned) {
			continue
		}
		if canonical, _, ok := rule.Canonicalize(cleaned); ok {
			if c, exists := candidates.get(strings.ToLower(canonical)); exists {
				return c
			}
		}
		return nil
	}
	if parsed, err := url.Parse(cleaned); err == nil {
		if c, exists := candidates.get(strings.ToLower(parsed.Hostname())); exists {
			return c
		}
	}
	return nil
}

func (e *SocialEngine) scoreAnchorKeywords(candidates *candidateSet, page *PageDocument, a PageAnchor, pageHost string) {
	c := e.lookupCandidate(candidates, page, a.Href, pageHost)
	if c == nil {
		return
	}
	fullText := strings.ToLower(a.Text + " " + a.AriaLabel + " " + a.Title)

	for _, keywords := range e.hints {
		if containsAny(fullText, keywords) {
			c.score += 5
			break
		}
	}

	if c.platform == types.PlatformWebsite {
		if containsAny(fullText, websiteKeywords) {
			c.score += 6
		}
		if containsAny(a.SurroundingText, contactKeywords) {
			c.score += 3
		}
	}

	if followHintRe.MatchString(fullText) {
		c.score += 3
	}
}

func (e *SocialEngine) buildResult(candidates *candidateSet, result *SocialResult) {
	processed := make([]*socialCandidate, 0, len(candidates.order))
	for _, key := range candidates.order {
		c := candidates.byKey[key]
		// Residual tracking junk the cleaner could not attribute.
		if parsed, err := url.Parse(c.url); err == nil && len(parsed.RawQuery) > 50 {
			c.score -= 3
		}
		processed = append(processed, c)
	}
	sort.SliceStable(processed, func(i, j int) bool {
		if processed[i].score != processed[j].score {
			return processed[i].score > processed[j].score
		}
		return processed[i].url < processed[j].url
	})

	// Group by platform, dedupe by identity so instagram.com/foo and
	// instagram.com/foo?hl=en collapse to one entry.
	grouped := make(map[types.Platform][]*socialCandidate)
	seenIdentity := make(map[types.Platform]map[string]struct{})
	for _, c := range processed {
		if seenIdentity[c.platform] == nil {
			seenIdentity[c.platform] = make(map[string]struct{})
		}
		identity := strings.ToLower(c.username)
		if identity == "" {
			identity = strings.ToLower(c.url)
		}
		if _, dup := seenIdentity[c.platform][identity]; dup {
			continue
		}
		seenIdentity[c.platform][identity] = struct{}{}
		grouped[c.platform] = append(grouped[c.platform], c)
	}

	for platform, group := range grouped {
		prefer := e.preferFunc(platform)
		sort.SliceStable(group, func(i, j int) bool {
			if prefer != nil {
				if cmp := prefer(group[i].url, group[j].url); cmp != 0 {
					return cmp < 0
				}
			}
			return group[i].score > group[j].score
		})
		if platform == types.PlatformWebsite && len(group) > maxWebsiteResults {
			grouped[platform] = group[:maxWebsiteResults]
		}
	}

	// Emit in fixed platform priority order, websites last, so bestLinks
	// needs no separate sort.
	order := append(types.SocialPlatforms(), types.PlatformWebsite)
	for _, platform := range order {
		group := grouped[platform]
		if len(group) == 0 {
			continue
		}
		urls := make([]string, 0, len(group))
		for _, c := range group {
			urls = append(urls, c.url)
			result.Links = append(result.Links, types.SocialLink{
				Platform:     platform,
				CanonicalURL: c.url,
				Username:     c.username,
				Score:        c.score,
			})
		}
		result.ByPlatform[platform] = urls
		best := group[0]
		result.BestLinks = append(result.BestLinks, types.SocialLink{
			Platform:     platform,
			CanonicalURL: best.url,
			Username:     best.username,
			Score:        best.score,
		})
	}
}

func (e *SocialEngine) preferFunc(platform types.Platform) func(a, b string) int {
	for _, rule := range e.rules {
		if rule.Platform == platform {
			return rule.PreferLink
		}
	}
	return nil
}

// CleanURL normalizes a raw URL: https forced, tracking params and fragment
// removed, trailing slash trimmed, percent-escapes in the path decoded.
// Returns "" for unparseable input. Cleaning an already-clean URL is a
// fixed point.
func (e *SocialEngine) CleanURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	parsed.Scheme = "https"
	parsed.Fragment = ""

	q := parsed.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	parsed.RawQuery = q.Encode()

	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	if decoded, err := url.PathUnescape(parsed.Path); err == nil {
		parsed.Path = decoded
	}
	parsed.RawPath = ""

	return trailingURLRe.ReplaceAllString(parsed.String(), "")
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
