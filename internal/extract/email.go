// internal/extract/email.go
package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// EmailConfig holds the curated word lists the email engine cleans and
// validates against. The lists drift from reality over time, so they are
// configuration data rather than code.
type EmailConfig struct {
	// ValidTLDs is the fixed TLD list used for domain repair, compound TLDs
	// included. Matching is longest-first.
	ValidTLDs []string `yaml:"valid_tlds"`
	// JunkSuffixes are UI words that pages glue directly onto addresses
	// ("gmail.comread"). Used only when no valid TLD prefix matches.
	JunkSuffixes []string `yaml:"junk_suffixes"`
	// Placeholders are whole addresses rejected outright.
	Placeholders []string `yaml:"placeholders"`
	// SpamDomains are domains rejected outright.
	SpamDomains []string `yaml:"spam_domains"`
	// GenerateNames synthesizes a display name from the local part of each
	// accepted address.
	GenerateNames bool `yaml:"generate_names"`
}

// DefaultEmailConfig returns the built-in word lists.
func DefaultEmailConfig() EmailConfig {
	return EmailConfig{
		ValidTLDs: []string{
			"co.uk", "co.in", "co.nz", "co.za", "co.jp", "com.au", "com.br",
			"com.sg", "org.uk", "net.in", "ac.uk", "gov.uk",
			"com", "org", "net", "edu", "gov", "mil", "int",
			"io", "co", "ai", "app", "dev", "me", "us", "uk", "in", "ca",
			"au", "de", "fr", "es", "it", "nl", "ae", "sa", "pk", "bd", "sg",
			"info", "biz", "xyz", "online", "site", "store", "tech", "shop",
			"agency", "studio", "design", "media", "digital", "email", "cloud",
		},
		JunkSuffixes: []string{
			"read", "more", "phone", "call", "contact", "email", "ads", "adspeople",
			"collab", "message", "whatsapp", "click", "here", "now", "button", "link",
			"copy", "share", "send", "reply", "view", "show", "details", "info",
			"enquiry", "inquiry", "form", "submit", "get", "reach", "us", "me",
			"today", "free", "quote", "help", "support", "service",
		},
		Placeholders: []string{
			"abc@xyz.com", "test@test.com", "example@example.com", "email@example.com",
			"user@example.com", "sample@sample.com", "demo@demo.com", "your@email.com",
			"name@domain.com", "yourname@email.com", "john@doe.com", "jane@doe.com",
			"admin@example.com", "info@example.com", "mail@example.com", "me@example.com",
			"you@example.com", "user@domain.com", "email@domain.com", "name@example.com",
			"placeholder@email.com", "noreply@example.com", "no-reply@example.com",
		},
		SpamDomains: []string{
			"example.com", "example.org", "example.net", "test.com", "domain.com",
			"email.com", "mail.com", "yoursite.com", "website.com", "company.com",
		},
	}
}

// EmailResult is the outcome of one email extraction pass.
type EmailResult struct {
	Valid   []types.EmailRecord
	Invalid []string
}

var (
	leadingJunkRe  = regexp.MustCompile("^[-_.,;:!?#@&*()\\[\\]{}|\\\\/<>'\"=+`~^]+")
	trailingJunkRe = regexp.MustCompile("[-_.,;:!?#&*()\\[\\]{}|\\\\/<>'\"=+`~^]+$")
	emailShapeRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,24}$`)
	assetSuffixRe  = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|svg|webp|css|js|ico|woff|ttf|pdf|doc|mp4|mp3)$`)
	fakePrefixRe   = regexp.MustCompile(`(?i)^(test|example|sample|demo|fake|dummy|placeholder|noreply|no-reply)@`)
	domainLabelRe  = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z.]+$`)
)

// serpSnippetSelectors are the result-snippet containers scanned on search
// engine results pages. These track Google's markup and will drift.
var serpSnippetSelectors = []string{
	"div.VwiC3b", "div.yXK7lf", "span.aCOpRe", "div.MjjYud",
	"div.IsZvec", "div.BNeawe", "div.s3v9rd", "span.st",
	"cite", "h3",
}

// EmailEngine harvests addresses from every page surface, repairs glued junk
// suffixes, validates and deduplicates.
type EmailEngine struct {
	cfg          EmailConfig
	tlds         []string
	placeholders map[string]struct{}
	spamDomains  map[string]struct{}
	logger       utils.Logger
}

// NewEmailEngine builds an engine from cfg. Zero-value list fields fall back
// to the defaults.
func NewEmailEngine(cfg EmailConfig, logger utils.Logger) *EmailEngine {
	def := DefaultEmailConfig()
	if len(cfg.ValidTLDs) == 0 {
		cfg.ValidTLDs = def.ValidTLDs
	}
	if len(cfg.JunkSuffixes) == 0 {
		cfg.JunkSuffixes = def.JunkSuffixes
	}
	if len(cfg.Placeholders) == 0 {
		cfg.Placeholders = def.Placeholders
	}
	if len(cfg.SpamDomains) == 0 {
		cfg.SpamDomains = def.SpamDomains
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	tlds := make([]string, len(cfg.ValidTLDs))
	copy(tlds, cfg.ValidTLDs)
	sort.Slice(tlds, func(i, j int) bool { return len(tlds[i]) > len(tlds[j]) })

	placeholders := make(map[string]struct{}, len(cfg.Placeholders))
	for _, p := range cfg.Placeholders {
		placeholders[strings.ToLower(p)] = struct{}{}
	}
	spamDomains := make(map[string]struct{}, len(cfg.SpamDomains))
	for _, d := range cfg.SpamDomains {
		spamDomains[strings.ToLower(d)] = struct{}{}
	}

	return &EmailEngine{
		cfg:          cfg,
		tlds:         tlds,
		placeholders: placeholders,
		spamDomains:  spamDomains,
		logger:       logger.WithField("engine", "email"),
	}
}

// Extract harvests, cleans and validates addresses from page. With validate
// false every cleaned address is returned as valid. Both result slices are
// deduplicated case-insensitively and sorted ascending.
func (e *EmailEngine) Extract(page *PageDocument, validate bool) EmailResult {
	result := EmailResult{}
	if page == nil {
		return result
	}

	// Candidate set in first-seen order, keyed by raw string.
	seen := make(map[string]struct{})
	var candidates []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		candidates = append(candidates, raw)
	}

	for _, m := range FindEmailsLike(page.VisibleText()) {
		add(m)
	}
	for _, m := range FindEmailsLike(page.RawMarkup()) {
		add(m)
	}
	e.collectFromAnchors(page, add)
	if page.IsSearchResults() {
		e.collectFromSERP(page, add)
	}
	for _, content := range page.MetaContents("description", "og:description", "author", "og:email", "email", "article:author") {
		for _, m := range FindEmailsLike(content) {
			add(m)
		}
	}
	for _, body := range page.StructuredData() {
		for _, m := range FindEmailsLike(body) {
			add(m)
		}
	}
	e.collectFromAttributes(page, add)

	for _, raw := range candidates {
		cleaned := e.CleanEmail(raw)
		if cleaned == "" {
			continue
		}
		if !validate || e.IsValid(cleaned) {
			result.Valid = append(result.Valid, e.newRecord(cleaned))
		} else {
			result.Invalid = append(result.Invalid, cleaned)
		}
	}

	result.Valid = dedupeRecords(result.Valid)
	result.Invalid = dedupeStrings(result.Invalid)
	sort.Slice(result.Valid, func(i, j int) bool {
		return result.Valid[i].Address < result.Valid[j].Address
	})
	sort.Strings(result.Invalid)

	e.logger.Debugf("extracted %d valid, %d invalid from %d candidates",
		len(result.Valid), len(result.Invalid), len(candidates))
	return result
}

func (e *EmailEngine) newRecord(address string) types.EmailRecord {
	rec := types.EmailRecord{Address: address}
	if e.cfg.GenerateNames {
		rec.DisplayName = SynthesizeName(address)
	}
	return rec
}

func (e *EmailEngine) collectFromAnchors(page *PageDocument, add func(string)) {
	for _, href := range page.AttrValues(`a[href^="mailto:"]`, "href") {
		addr := strings.TrimPrefix(strings.TrimPrefix(href, "mailto:"), "MAILTO:")
		if i := strings.Index(addr, "?"); i >= 0 {
			addr = addr[:i]
		}
		if strings.Contains(addr, "@") {
			add(addr)
		}
	}
	for _, href := range page.AttrValues("a[href]", "href") {
		if !strings.Contains(href, "@") || strings.HasPrefix(strings.ToLower(href), "mailto:") {
			continue
		}
		for _, m := range FindEmailsLike(href) {
			add(m)
		}
	}
}

func (e *EmailEngine) collectFromSERP(page *PageDocument, add func(string)) {
	for _, text := range page.SelectTexts(serpSnippetSelectors...) {
		for _, m := range FindEmailsLike(text) {
			add(m)
		}
	}
	// Addresses hidden inside search redirect targets.
	for _, href := range page.AttrValues(`a[href*="/url?"]`, "href") {
		if target := decodeRedirectTarget(href); target != "" {
			for _, m := range FindEmailsLike(target) {
				add(m)
			}
		}
	}
}

func (e *EmailEngine) collectFromAttributes(page *PageDocument, add func(string)) {
	for _, attr := range []string{"data-email", "data-mail", "data-contact"} {
		for _, v := range page.AttrValues("["+attr+"]", attr) {
			if strings.Contains(v, "@") {
				add(v)
			}
		}
	}
	for _, v := range page.AttrValues(`[aria-label*="@"]`, "aria-label") {
		for _, m := range FindEmailsLike(v) {
			add(m)
		}
	}
}

// CleanEmail repairs a raw candidate: lowercases, strips junk characters and
// any mailto: prefix, trims the domain back to a recognized TLD, and applies
// a last-resort regex rescue. Returns "" when nothing recoverable remains.
//
// The two-stage design (structural trim, then regex rescue) exists because
// pages glue trailing UI words straight onto addresses with no separator,
// and a lone regex over-captures the junk.
func (e *EmailEngine) CleanEmail(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}

	cleaned = leadingJunkRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimPrefix(cleaned, "mailto:")

	at := strings.Index(cleaned, "@")
	if at < 0 {
		return ""
	}
	local := cleaned[:at]
	domain := cleaned[at+1:]

	if repaired, ok := e.trimDomainToTLD(domain); ok {
		domain = repaired
	} else {
		domain = e.stripJunkSuffixes(domain)
	}
	domain = trailingJunkRe.ReplaceAllString(domain, "")

	cleaned = local + "@" + domain
	if !strings.Contains(cleaned, "@") || !strings.Contains(cleaned, ".") {
		return ""
	}
	if len(cleaned) < 6 { // a@b.co minimum
		return ""
	}

	if !emailShapeRe.MatchString(cleaned) {
		rescued := emailPattern.FindString(cleaned)
		if rescued == "" {
			return ""
		}
		cleaned = rescued
	}
	return cleaned
}

// trimDomainToTLD finds the earliest point where domain ends in a configured
// TLD followed by a non-letter, and truncates there. Compound TLDs win over
// their prefixes because the list is checked longest-first.
func (e *EmailEngine) trimDomainToTLD(domain string) (string, bool) {
	for i := 0; i < len(domain); i++ {
		if domain[i] != '.' {
			continue
		}
		rest := domain[i+1:]
		for _, tld := range e.tlds {
			if !strings.HasPrefix(rest, tld) {
				continue
			}
			end := i + 1 + len(tld)
			if end < len(domain) && isASCIILetter(domain[end]) {
				continue
			}
			prefix := domain[:end]
			if domainLabelRe.MatchString(prefix) {
				return prefix, true
			}
		}
	}
	return domain, false
}

// stripJunkSuffixes truncates the domain at a junk word glued directly after
// a short TLD-shaped segment (".comread" -> ".com").
func (e *EmailEngine) stripJunkSuffixes(domain string) string {
	for _, suffix := range e.cfg.JunkSuffixes {
		if strings.HasSuffix(domain, "."+suffix) {
			domain = domain[:len(domain)-len(suffix)]
			continue
		}
		if i := junkAfterTLDIndex(domain, suffix); i > 0 {
			domain = domain[:i]
		}
	}
	return domain
}

// junkAfterTLDIndex returns the index where suffix begins when it directly
// follows a dot plus 2-10 letters, or -1.
func junkAfterTLDIndex(domain, suffix string) int {
	for i := 3; i+len(suffix) <= len(domain); i++ {
		if domain[i:i+len(suffix)] != suffix {
			continue
		}
		dot := strings.LastIndexByte(domain[:i], '.')
		if dot < 0 {
			continue
		}
		seg := domain[dot+1 : i]
		if len(seg) < 2 || len(seg) > 10 {
			continue
		}
		if !allASCIILetters(seg) {
			continue
		}
		return i
	}
	return -1
}

// IsValid applies the acceptance rules to a cleaned address.
func (e *EmailEngine) IsValid(email string) bool {
	if email == "" {
		return false
	}
	lower := strings.ToLower(email)
	if _, ok := e.placeholders[lower]; ok {
		return false
	}
	if !emailShapeRe.MatchString(email) {
		return false
	}

	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]

	if len(local) < 1 || len(local) > 64 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}

	if len(domain) < 4 { // a.co minimum
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasPrefix(domain, "-") ||
		strings.HasSuffix(domain, ".") || strings.HasSuffix(domain, "-") {
		return false
	}
	// Asset filenames containing @ are the main false-positive source.
	if assetSuffixRe.MatchString(domain) {
		return false
	}
	if _, ok := e.spamDomains[strings.ToLower(domain)]; ok {
		return false
	}
	if fakePrefixRe.MatchString(email) {
		return false
	}
	return true
}

func dedupeRecords(records []types.EmailRecord) []types.EmailRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// decodeRedirectTarget unwraps a search engine /url?q=... redirect href.
func decodeRedirectTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	q := u.Query()
	if target := q.Get("q"); target != "" {
		return target
	}
	return q.Get("url")
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func allASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return len(s) > 0
}
