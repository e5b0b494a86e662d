// internal/extract/names.go
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nameTitles      = []string{"mr", "mrs", "ms", "dr", "prof", "sir", "miss"}
	nameSeparators  = []string{".", "_", "-", "+"}
	leadingDigitsRe = regexp.MustCompile(`^\d+`)
	trailingDigitRe = regexp.MustCompile(`\d+$`)
	anyDigitsRe     = regexp.MustCompile(`\d+`)
	camelPartRe     = regexp.MustCompile(`[a-z]+|[A-Z][a-z]*`)

	titleCaser = cases.Title(language.English)
)

// SynthesizeName derives a human-readable display name from an email
// address's local part: honorifics and digits stripped, separator or
// camelCase segments capitalized, at most three parts. Returns "" when
// nothing name-like survives.
func SynthesizeName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return ""
	}
	// Case is kept until the end: camelCase is a split signal.
	cleaned := local
	for _, title := range nameTitles {
		lower := strings.ToLower(cleaned)
		if strings.HasPrefix(lower, title+".") {
			cleaned = cleaned[len(title)+1:]
			break
		}
		if strings.HasPrefix(lower, title) && len(cleaned) > len(title) {
			cleaned = cleaned[len(title):]
			break
		}
	}

	cleaned = trailingDigitRe.ReplaceAllString(cleaned, "")
	cleaned = leadingDigitsRe.ReplaceAllString(cleaned, "")

	parts := []string{cleaned}
	for _, sep := range nameSeparators {
		if strings.Contains(cleaned, sep) {
			parts = splitNonEmpty(cleaned, sep)
			break
		}
	}

	if len(parts) == 1 && len(parts[0]) > 3 {
		if camel := camelPartRe.FindAllString(parts[0], -1); len(camel) > 1 {
			parts = camel
		}
	}

	var nameParts []string
	for _, p := range parts {
		if len(p) <= 1 {
			continue
		}
		p = anyDigitsRe.ReplaceAllString(p, "")
		if p == "" {
			continue
		}
		nameParts = append(nameParts, titleCaser.String(strings.ToLower(p)))
	}
	if len(nameParts) == 0 {
		return ""
	}
	if len(nameParts) > 3 {
		nameParts = nameParts[:3]
	}
	return strings.Join(nameParts, " ")
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
