// internal/extract/matcher.go
package extract

import "regexp"

// Size ceilings applied before any regex scan. Pathological pages (infinite
// scroll dumps, inlined bundles) are truncated rather than scanned in full so
// a single pass stays linear and bounded.
const (
	// MaxTextScan bounds rendered-text scans used for phone patterns.
	MaxTextScan = 150000
	// MaxHTMLScan bounds raw-markup scans.
	MaxHTMLScan = 300000
)

var (
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,24}`)
	urlPattern       = regexp.MustCompile(`https?://[^\s<>"']+`)
	intlPhonePattern = regexp.MustCompile(`\+\d{1,4}[\s\-.]?\d{3,5}[\s\-.]?\d{3,5}[\s\-.]?\d{0,4}`)
	indiaMobileRe    = regexp.MustCompile(`\b[6-9]\d{4}[\s\-.]?\d{5}\b`)
	telHrefPattern   = regexp.MustCompile(`(?i)href=["']tel:([^"']+)["']`)
	waLinkPattern    = regexp.MustCompile(`(?i)wa\.me/(\d{10,15})`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
)

// Truncate caps s at n bytes. It never splits the scan window on a rune
// boundary concern because all downstream patterns are ASCII.
func Truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FindEmailsLike returns raw email-shaped substrings of text, in order of
// appearance. Candidates are uncleaned and unvalidated.
func FindEmailsLike(text string) []string {
	return emailPattern.FindAllString(Truncate(text, MaxHTMLScan), -1)
}

// FindURLsLike returns raw http(s) URL substrings of text.
func FindURLsLike(text string) []string {
	return urlPattern.FindAllString(Truncate(text, MaxHTMLScan), -1)
}

// FindIntlPhoneSequences returns substrings shaped like +<dial><number>.
func FindIntlPhoneSequences(text string) []string {
	return intlPhonePattern.FindAllString(Truncate(text, MaxTextScan), -1)
}

// FindIndiaMobileSequences returns bare 10-digit sequences starting 6-9,
// optionally split 5+5 by a single separator.
func FindIndiaMobileSequences(text string) []string {
	return indiaMobileRe.FindAllString(Truncate(text, MaxTextScan), -1)
}

// FindTelHrefs returns the values of tel: href attributes in raw markup.
func FindTelHrefs(html string) []string {
	matches := telHrefPattern.FindAllStringSubmatch(Truncate(html, MaxHTMLScan), -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// FindWhatsAppNumbers returns the digit payloads of wa.me deep links.
func FindWhatsAppNumbers(html string) []string {
	matches := waLinkPattern.FindAllStringSubmatch(Truncate(html, MaxHTMLScan), -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// DigitsOnly strips every non-digit byte from s.
func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}
