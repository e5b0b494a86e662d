// internal/extract/phone.go
package extract

import (
	"regexp"
	"strings"

	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Per-source and overall candidate caps. Each source contributes a bounded
// number of matches so one pathological page cannot dominate a pass.
const (
	maxTelCandidates   = 20
	maxWhatsAppMatches = 10
	maxIntlMatches     = 30
	maxTextMatches     = 40
	maxPhoneCandidates = 50
	maxPhoneResults    = 20
)

// CountryRule describes one country's national number shape: dial code,
// exact digit count after normalization, and a leading-digit pattern.
type CountryRule struct {
	Code   types.CountryCode
	Name   string
	Dial   string
	Length int
	Prefix *regexp.Regexp
}

// DefaultCountryRules returns the built-in rule table. This is deliberately
// a small curated table, not a full numbering plan.
func DefaultCountryRules() []CountryRule {
	return []CountryRule{
		{Code: types.CountryIN, Name: "India", Dial: "+91", Length: 10, Prefix: regexp.MustCompile(`^[6-9]`)},
		{Code: types.CountryUS, Name: "United States", Dial: "+1", Length: 10, Prefix: regexp.MustCompile(`^[2-9]`)},
		{Code: types.CountryCA, Name: "Canada", Dial: "+1", Length: 10, Prefix: regexp.MustCompile(`^[2-9]`)},
		{Code: types.CountryUK, Name: "United Kingdom", Dial: "+44", Length: 10, Prefix: regexp.MustCompile(`^7`)},
		{Code: types.CountryAE, Name: "United Arab Emirates", Dial: "+971", Length: 9, Prefix: regexp.MustCompile(`^5`)},
		{Code: types.CountrySG, Name: "Singapore", Dial: "+65", Length: 8, Prefix: regexp.MustCompile(`^[89]`)},
		{Code: types.CountryAU, Name: "Australia", Dial: "+61", Length: 9, Prefix: regexp.MustCompile(`^4`)},
		{Code: types.CountryDE, Name: "Germany", Dial: "+49", Length: 10, Prefix: regexp.MustCompile(`^1`)},
		{Code: types.CountryFR, Name: "France", Dial: "+33", Length: 9, Prefix: regexp.MustCompile(`^[67]`)},
		{Code: types.CountrySA, Name: "Saudi Arabia", Dial: "+966", Length: 9, Prefix: regexp.MustCompile(`^5`)},
		{Code: types.CountryPK, Name: "Pakistan", Dial: "+92", Length: 10, Prefix: regexp.MustCompile(`^3`)},
		{Code: types.CountryBD, Name: "Bangladesh", Dial: "+880", Length: 10, Prefix: regexp.MustCompile(`^1`)},
	}
}

// PhoneResult is the outcome of one phone extraction pass. Filtered counts
// candidates dropped as duplicates or validation failures, for observability.
type PhoneResult struct {
	Phones   []types.PhoneRecord
	Filtered int
}

type phoneCandidate struct {
	raw    string
	digits string
}

// PhoneEngine harvests phone candidates from tel: links, WhatsApp deep
// links and text patterns, then validates them against a per-country rule
// table.
type PhoneEngine struct {
	rules  map[types.CountryCode]CountryRule
	logger utils.Logger
}

// NewPhoneEngine builds an engine over the given rule table. A nil or empty
// table falls back to the defaults.
func NewPhoneEngine(rules []CountryRule, logger utils.Logger) *PhoneEngine {
	if len(rules) == 0 {
		rules = DefaultCountryRules()
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	byCode := make(map[types.CountryCode]CountryRule, len(rules))
	for _, r := range rules {
		byCode[r.Code] = r
	}
	return &PhoneEngine{
		rules:  byCode,
		logger: logger.WithField("engine", "phone"),
	}
}

// Extract harvests and validates phone numbers. Extraction is opt-in per
// country: with no countries selected, a bare 10-digit sequence is
// unresolvable, so the engine returns an empty result immediately.
func (e *PhoneEngine) Extract(page *PageDocument, countries []types.CountryCode) PhoneResult {
	result := PhoneResult{}
	if page == nil || len(countries) == 0 {
		return result
	}

	html := page.RawMarkup()
	text := page.VisibleText()
	if len(text) < 10 {
		return result
	}

	var candidates []phoneCandidate
	candidates = e.collectTelLinks(html, candidates)
	candidates = e.collectWhatsApp(html, candidates)
	candidates = e.collectFromText(text, candidates)

	if len(candidates) > maxPhoneCandidates {
		candidates = candidates[:maxPhoneCandidates]
	}

	seen := make(map[string]struct{})
	var phones []types.PhoneRecord
	for _, c := range candidates {
		formatted, ok := e.Validate(c.digits, countries)
		if !ok {
			continue
		}
		if _, dup := seen[formatted]; dup {
			continue
		}
		seen[formatted] = struct{}{}
		phones = append(phones, types.PhoneRecord{E164: formatted})
	}

	result.Filtered = len(candidates) - len(phones)
	if len(phones) > maxPhoneResults {
		phones = phones[:maxPhoneResults]
	}
	result.Phones = phones

	e.logger.Debugf("validated %d of %d candidates (%d filtered)",
		len(result.Phones), len(candidates), result.Filtered)
	return result
}

func (e *PhoneEngine) collectTelLinks(html string, candidates []phoneCandidate) []phoneCandidate {
	count := 0
	for _, raw := range FindTelHrefs(html) {
		if count >= maxTelCandidates {
			break
		}
		digits := DigitsOnly(raw)
		if len(digits) >= 8 && len(digits) <= 15 {
			candidates = append(candidates, phoneCandidate{raw: raw, digits: digits})
			count++
		}
	}
	return candidates
}

func (e *PhoneEngine) collectWhatsApp(html string, candidates []phoneCandidate) []phoneCandidate {
	count := 0
	for _, digits := range FindWhatsAppNumbers(html) {
		if count >= maxWhatsAppMatches {
			break
		}
		candidates = append(candidates, phoneCandidate{raw: "+" + digits, digits: digits})
		count++
	}
	return candidates
}

func (e *PhoneEngine) collectFromText(text string, candidates []phoneCandidate) []phoneCandidate {
	count := 0
	for _, raw := range FindIntlPhoneSequences(text) {
		if count >= maxIntlMatches {
			break
		}
		digits := DigitsOnly(raw)
		if len(digits) >= 10 && len(digits) <= 15 {
			candidates = append(candidates, phoneCandidate{raw: raw, digits: digits})
			count++
		}
	}

	// Bare India mobile numbers are a high-value special case; only scanned
	// when the international pass left headroom.
	if count < 20 {
		for _, raw := range FindIndiaMobileSequences(text) {
			if count >= maxTextMatches {
				break
			}
			digits := DigitsOnly(raw)
			if len(digits) == 10 {
				candidates = append(candidates, phoneCandidate{raw: raw, digits: digits})
				count++
			}
		}
	}
	return candidates
}

// Validate checks a digit string against each selected country in caller
// order and returns the formatted E.164 number on the first match. Dial-code
// ties (US/CA share +1) resolve by list order, not by any global heuristic.
func (e *PhoneEngine) Validate(digits string, countries []types.CountryCode) (string, bool) {
	for _, code := range countries {
		rule, ok := e.rules[code]
		if !ok {
			continue
		}

		normalized := digits
		dialDigits := DigitsOnly(rule.Dial)
		if strings.HasPrefix(normalized, dialDigits) {
			normalized = normalized[len(dialDigits):]
		}
		normalized = strings.TrimPrefix(normalized, "0")

		if len(normalized) == rule.Length && rule.Prefix.MatchString(normalized) {
			return rule.Dial + normalized, true
		}
	}
	return "", false
}
