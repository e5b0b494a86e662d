// internal/extract/profile.go
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// ProfileDetection classifies a URL as a profile page.
type ProfileDetection struct {
	Platform types.Platform
	// Kind is "personal" or "company".
	Kind string
}

var (
	instagramProfileRe = regexp.MustCompile(`(?i)instagram\.com/([^/?#]+)`)
	linkedinProfileRe  = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#]+)`)
	instagramRedirRe   = regexp.MustCompile(`u=([^&]+)`)
)

var instagramNonProfileSegments = []string{
	"/p/", "/reels/", "/stories/", "/explore/", "/direct/", "/accounts/", "/reel/",
}

// DetectProfilePage reports whether pageURL is a LinkedIn or Instagram
// profile page. Post, story and explore sub-paths are explicitly excluded:
// a page about a profile is not the profile.
func DetectProfilePage(pageURL string) (ProfileDetection, bool) {
	lower := strings.ToLower(pageURL)

	if strings.Contains(lower, "linkedin.com/in/") {
		return ProfileDetection{Platform: types.PlatformLinkedIn, Kind: "personal"}, true
	}
	if strings.Contains(lower, "linkedin.com/company/") {
		return ProfileDetection{Platform: types.PlatformLinkedIn, Kind: "company"}, true
	}

	if strings.Contains(lower, "instagram.com/") {
		for _, seg := range instagramNonProfileSegments {
			if strings.Contains(lower, seg) {
				return ProfileDetection{}, false
			}
		}
		if m := instagramProfileRe.FindStringSubmatch(pageURL); m != nil {
			if !isReservedHandle(m[1], "p", "reels", "stories", "explore", "direct", "accounts", "reel") {
				return ProfileDetection{Platform: types.PlatformInstagram, Kind: "personal"}, true
			}
		}
	}

	return ProfileDetection{}, false
}

// ProfileID derives a stable identity from a profile URL: a non-cryptographic
// 32-bit string hash rendered in base 36. Deterministic so re-extracting the
// same profile keeps the same key.
func ProfileID(profileURL string) string {
	var hash int32
	for _, r := range profileURL {
		hash = (hash<<5 - hash) + int32(r)
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// Selector fallback chains per field. Profile markup drifts constantly, so
// each field tries several selectors in order and the first non-empty text
// wins. A miss is an empty field, never an error.
var (
	linkedinNameSelectors = []string{
		"h1.text-heading-xlarge",
		`h1[class*="text-heading"]`,
		".pv-top-card h1",
		".ph5 h1",
		"section.artdeco-card h1",
		"h1",
	}
	linkedinHeadlineSelectors = []string{
		".text-body-medium.break-words",
		`div[class*="text-body-medium"]`,
		".pv-top-card--list .text-body-medium",
		".ph5 .text-body-medium",
	}
	linkedinLocationSelectors = []string{
		".pv-top-card--list-bullet .text-body-small",
		`span[class*="text-body-small"][class*="inline"]`,
		".ph5 .text-body-small.inline",
	}
	linkedinCompanySelectors = []string{
		".pv-top-card--experience-list-item .t-bold span",
		`li[class*="experience"] .t-bold`,
		".experience-item .t-bold",
	}

	instagramNameSelectors = []string{
		`header section span[class*="x1lliihq"]`,
		"header h2 + span",
		"header section h1",
		"header section span:first-of-type",
	}
	instagramBioSelectors = []string{
		"header section h1 + div span",
		"header section > div > span",
		`header section div[class*="x7a106z"]`,
		`header section span[class*="_ap3a"]`,
	}
	instagramLinkSelectors = []string{
		`header section a[href*="l.instagram.com"]`,
		`header section a[rel*="noopener"]`,
		`header a[target="_blank"]`,
	}
)

// ProfileEngine scrapes structured fields from a profile page, delegating
// email and phone discovery to the other engines.
type ProfileEngine struct {
	emails *EmailEngine
	phones *PhoneEngine
	logger utils.Logger
}

// NewProfileEngine builds a profile engine on top of the email and phone
// engines.
func NewProfileEngine(emails *EmailEngine, phones *PhoneEngine, logger utils.Logger) *ProfileEngine {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &ProfileEngine{
		emails: emails,
		phones: phones,
		logger: logger.WithField("engine", "profile"),
	}
}

// Extract scrapes page as a profile. ok is false when pageURL is not a
// recognized profile page.
func (e *ProfileEngine) Extract(page *PageDocument, pageURL string, countries []types.CountryCode) (*types.ProfileRecord, bool) {
	detection, ok := DetectProfilePage(pageURL)
	if !ok || page == nil {
		return nil, false
	}

	profileURL := pageURL
	if i := strings.Index(profileURL, "?"); i >= 0 {
		profileURL = profileURL[:i]
	}

	record := &types.ProfileRecord{
		Platform:   detection.Platform,
		ProfileURL: profileURL,
		ID:         ProfileID(profileURL),
		CreatedAt:  time.Now().UTC(),
	}

	switch detection.Platform {
	case types.PlatformLinkedIn:
		e.fillLinkedIn(page, pageURL, record)
	case types.PlatformInstagram:
		e.fillInstagram(page, pageURL, record)
	}

	e.fillContacts(page, countries, record)

	e.logger.Debugf("extracted %s profile %s", detection.Platform, record.Username)
	return record, true
}

func (e *ProfileEngine) fillLinkedIn(page *PageDocument, pageURL string, record *types.ProfileRecord) {
	record.FullName = page.FirstText(linkedinNameSelectors...)
	record.Headline = page.FirstText(linkedinHeadlineSelectors...)
	record.Location = page.FirstText(linkedinLocationSelectors...)
	record.CompanyName = page.FirstText(linkedinCompanySelectors...)

	if m := linkedinProfileRe.FindStringSubmatch(pageURL); m != nil {
		record.Username = m[1]
	} else if m := linkedinCoRe.FindStringSubmatch(pageURL); m != nil {
		record.Username = m[1]
	}

	// Off-platform links from the contact info section.
	for _, href := range page.AttrValues(`a[href*="linkedin.com/redir"], section[id*="contact"] a`, "href") {
		if !strings.Contains(href, "linkedin.com") {
			record.ExternalLinks = append(record.ExternalLinks, href)
		}
	}
}

func (e *ProfileEngine) fillInstagram(page *PageDocument, pageURL string, record *types.ProfileRecord) {
	if m := instagramProfileRe.FindStringSubmatch(pageURL); m != nil {
		record.Username = m[1]
	}

	if name := page.FirstText(instagramNameSelectors...); name != "" && name != record.Username {
		record.FullName = name
	}
	if bio := page.FirstText(instagramBioSelectors...); len(bio) > 10 {
		record.Headline = Truncate(bio, 300)
	}

	// The bio website link is wrapped in an l.instagram.com redirect.
	for _, sel := range instagramLinkSelectors {
		hrefs := page.AttrValues(sel, "href")
		if len(hrefs) == 0 {
			continue
		}
		href := hrefs[0]
		if decoded, err := url.QueryUnescape(href); err == nil {
			if m := instagramRedirRe.FindStringSubmatch(decoded); m != nil {
				href = m[1]
			}
		}
		record.ExternalLinks = append(record.ExternalLinks, href)
		break
	}
}

// fillContacts delegates to the email and phone engines over the profile
// page, taking the first hit of each as the primary value and keeping the
// complete lists.
func (e *ProfileEngine) fillContacts(page *PageDocument, countries []types.CountryCode, record *types.ProfileRecord) {
	if e.emails != nil {
		emails := e.emails.Extract(page, true)
		for _, rec := range emails.Valid {
			record.AllEmails = append(record.AllEmails, rec.Address)
		}
		if len(record.AllEmails) > 0 {
			record.Email = record.AllEmails[0]
		}
	}

	if e.phones != nil && len(countries) > 0 {
		phones := e.phones.Extract(page, countries)
		for _, rec := range phones.Phones {
			record.AllPhones = append(record.AllPhones, rec.E164)
		}
		if len(record.AllPhones) > 0 {
			record.Phone = record.AllPhones[0]
		}
	}
}
