// internal/store/merge.go
package store

import (
	"net/url"
	"strings"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

// mergeTrackingParams are dropped when computing a URL's merge identity so
// the same link shared with different campaign tags collapses to one lead.
var mergeTrackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "igshid", "si", "ref", "ref_src", "ref_url",
	"source", "yclid", "msclkid", "feature", "hl", "lang",
}

// NormalizePhone reduces a phone string to the digit sequence used as its
// merge identity. International prefixes that the extractors emit in E.164
// form are stripped so "+919876543210" and "9876543210" collide.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	digits = strings.TrimPrefix(digits, "00")
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		digits = digits[1:]
	case len(digits) >= 12 && strings.HasPrefix(digits, "44"):
		digits = digits[2:]
	}
	return digits
}

// NormalizeURL reduces a URL to its merge identity: lowercase host without
// the www prefix, the path without a trailing slash, and any query left
// after tracking parameters are removed. Unparseable input falls back to
// lowercase trimming so it still gets a stable key.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}

	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	path := strings.TrimSuffix(strings.ToLower(parsed.Path), "/")

	q := parsed.Query()
	for _, param := range mergeTrackingParams {
		q.Del(param)
	}
	if query := q.Encode(); query != "" {
		return host + path + "?" + query
	}
	return host + path
}

// Merge folds result into saved and returns the new state. It is pure and
// append-only: existing entries keep their position, a colliding new entry
// overwrites in place (so enriched records like a backfilled display name
// win), and genuinely new entries append in extraction order. Merging the
// same result twice is a no-op the second time.
func Merge(saved types.SavedState, result types.ExtractionResult) types.SavedState {
	return types.SavedState{
		Emails:       mergeEmails(saved.Emails, result.Emails),
		Phones:       mergePhones(saved.Phones, result.Phones),
		SocialLinks:  mergeSocialLinks(saved.SocialLinks, result.SocialLinks),
		SERPLinkedIn: mergeURLs(saved.SERPLinkedIn, result.SERPLinkedIn),
	}
}

func mergeEmails(saved, incoming []types.EmailRecord) []types.EmailRecord {
	out := make([]types.EmailRecord, len(saved))
	copy(out, saved)

	index := make(map[string]int, len(out))
	for i, rec := range out {
		index[rec.Key()] = i
	}
	for _, rec := range incoming {
		if i, ok := index[rec.Key()]; ok {
			out[i] = rec
			continue
		}
		index[rec.Key()] = len(out)
		out = append(out, rec)
	}
	return out
}

func mergePhones(saved, incoming []types.PhoneRecord) []types.PhoneRecord {
	out := make([]types.PhoneRecord, len(saved))
	copy(out, saved)

	index := make(map[string]int, len(out))
	for i, rec := range out {
		index[NormalizePhone(rec.E164)] = i
	}
	for _, rec := range incoming {
		key := NormalizePhone(rec.E164)
		if i, ok := index[key]; ok {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

func mergeSocialLinks(saved, incoming []types.SocialLink) []types.SocialLink {
	key := func(l types.SocialLink) string {
		return string(l.Platform) + "|" + NormalizeURL(l.CanonicalURL)
	}

	out := make([]types.SocialLink, len(saved))
	copy(out, saved)

	index := make(map[string]int, len(out))
	for i, l := range out {
		index[key(l)] = i
	}
	for _, l := range incoming {
		k := key(l)
		if i, ok := index[k]; ok {
			out[i] = l
			continue
		}
		index[k] = len(out)
		out = append(out, l)
	}
	return out
}

func mergeURLs(saved, incoming []string) []string {
	out := make([]string, len(saved))
	copy(out, saved)

	index := make(map[string]int, len(out))
	for i, u := range out {
		index[NormalizeURL(u)] = i
	}
	for _, u := range incoming {
		key := NormalizeURL(u)
		if i, ok := index[key]; ok {
			out[i] = u
			continue
		}
		index[key] = len(out)
		out = append(out, u)
	}
	return out
}
