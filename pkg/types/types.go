// pkg/types/types.go
package types

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the social network a canonical link belongs to.
// The special value PlatformWebsite marks external sites that are not a
// recognized social network.
type Platform string

const (
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformWebsite   Platform = "website"
)

// SocialPlatforms returns all social platforms in presentation priority
// order. PlatformWebsite is excluded: it has no per-identity bound and
// is ranked after all social platforms.
func SocialPlatforms() []Platform {
	return []Platform{
		PlatformWhatsApp, PlatformInstagram, PlatformLinkedIn,
		PlatformTikTok, PlatformYouTube, PlatformTwitter, PlatformFacebook,
	}
}

// Priority returns the presentation rank of a platform; lower sorts first.
func (p Platform) Priority() int {
	for i, sp := range SocialPlatforms() {
		if p == sp {
			return i + 1
		}
	}
	return 99
}

// IsValid checks if the platform is a recognized value.
func (p Platform) IsValid() bool {
	if p == PlatformWebsite {
		return true
	}
	return p.Priority() != 99
}

// DisplayName returns the human-readable platform name for exports.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformWhatsApp:
		return "WhatsApp"
	case PlatformInstagram:
		return "Instagram"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	case PlatformYouTube:
		return "YouTube"
	case PlatformTwitter:
		return "Twitter/X"
	case PlatformFacebook:
		return "Facebook"
	case PlatformWebsite:
		return "Website"
	default:
		return string(p)
	}
}

// CountryCode selects a phone numbering rule from the configured rule table.
type CountryCode string

const (
	CountryIN CountryCode = "IN"
	CountryUS CountryCode = "US"
	CountryCA CountryCode = "CA"
	CountryUK CountryCode = "UK"
	CountryAE CountryCode = "AE"
	CountrySG CountryCode = "SG"
	CountryAU CountryCode = "AU"
	CountryDE CountryCode = "DE"
	CountryFR CountryCode = "FR"
	CountrySA CountryCode = "SA"
	CountryPK CountryCode = "PK"
	CountryBD CountryCode = "BD"
)

// AllCountries returns every supported country code.
func AllCountries() []CountryCode {
	return []CountryCode{
		CountryIN, CountryUS, CountryCA, CountryUK, CountryAE, CountrySG,
		CountryAU, CountryDE, CountryFR, CountrySA, CountryPK, CountryBD,
	}
}

// IsValid checks if the country code is a recognized value.
func (c CountryCode) IsValid() bool {
	for _, known := range AllCountries() {
		if c == known {
			return true
		}
	}
	return false
}

// EmailRecord is a validated, lowercased email address. DisplayName is an
// optional name synthesized from the local part; it may be backfilled
// after creation but Address never changes.
type EmailRecord struct {
	Address     string `json:"address" yaml:"address"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}

// Key returns the merge key for the record (case-insensitive address).
func (e EmailRecord) Key() string {
	return strings.ToLower(e.Address)
}

// PhoneRecord is a phone number in E.164 form: leading '+', digits only.
type PhoneRecord struct {
	E164 string `json:"e164" yaml:"e164"`
}

// SocialLink is the single canonical representative of one identity on
// one platform. CanonicalURL is never a raw or tracking-laden URL.
type SocialLink struct {
	Platform     Platform `json:"platform" yaml:"platform"`
	CanonicalURL string   `json:"canonical_url" yaml:"canonical_url"`
	Username     string   `json:"username,omitempty" yaml:"username,omitempty"`
	Score        int      `json:"score" yaml:"score"`
}

// Validate checks structural invariants on a social link.
func (l SocialLink) Validate() error {
	if !l.Platform.IsValid() {
		return fmt.Errorf("invalid platform: %s", l.Platform)
	}
	if l.CanonicalURL == "" {
		return fmt.Errorf("canonical URL cannot be empty")
	}
	if !strings.HasPrefix(l.CanonicalURL, "https://") {
		return fmt.Errorf("canonical URL must use https: %s", l.CanonicalURL)
	}
	return nil
}

// ProfileRecord holds the structured fields scraped from a LinkedIn or
// Instagram profile page. ID is a deterministic hash of ProfileURL so the
// same profile keeps the same identity across re-extractions.
type ProfileRecord struct {
	Platform      Platform  `json:"platform" yaml:"platform"`
	ProfileURL    string    `json:"profile_url" yaml:"profile_url"`
	FullName      string    `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Username      string    `json:"username,omitempty" yaml:"username,omitempty"`
	Headline      string    `json:"headline,omitempty" yaml:"headline,omitempty"`
	Location      string    `json:"location,omitempty" yaml:"location,omitempty"`
	CompanyName   string    `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	Email         string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone         string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	ExternalLinks []string  `json:"external_links,omitempty" yaml:"external_links,omitempty"`
	AllEmails     []string  `json:"all_emails,omitempty" yaml:"all_emails,omitempty"`
	AllPhones     []string  `json:"all_phones,omitempty" yaml:"all_phones,omitempty"`
	ID            string    `json:"id" yaml:"id"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// ExtractionResult is the per-pass aggregate for one page snapshot. It is
// replaced wholesale every pass and must never be merged in place; merging
// into cumulative state goes through the store's merge reconciler.
type ExtractionResult struct {
	Emails         []EmailRecord         `json:"emails"`
	InvalidEmails  []string              `json:"invalid_emails,omitempty"`
	Phones         []PhoneRecord         `json:"phones"`
	PhonesFiltered int                   `json:"phones_filtered"`
	SocialLinks    []SocialLink          `json:"social_links"`
	ByPlatform     map[Platform][]string `json:"by_platform,omitempty"`
	BestLinks      []SocialLink          `json:"best_links,omitempty"`
	SERPLinkedIn   []string              `json:"serp_linkedin,omitempty"`
	TimedOut       bool                  `json:"timed_out,omitempty"`
}

// TotalLeads counts emails, phones, social links (website excluded) and
// SERP LinkedIn hits for badge-style summaries.
func (r *ExtractionResult) TotalLeads() int {
	total := len(r.Emails) + len(r.Phones) + len(r.SERPLinkedIn)
	for platform, links := range r.ByPlatform {
		if platform != PlatformWebsite {
			total += len(links)
		}
	}
	return total
}

// SavedState is the cross-session cumulative lead collection. It is only
// ever grown through the merge reconciler; a single pass never truncates it.
type SavedState struct {
	Emails       []EmailRecord `json:"emails" yaml:"emails"`
	Phones       []PhoneRecord `json:"phones" yaml:"phones"`
	SocialLinks  []SocialLink  `json:"social_links" yaml:"social_links"`
	SERPLinkedIn []string      `json:"serp_linkedin" yaml:"serp_linkedin"`
}

// Counts summarizes the saved state per record family.
func (s *SavedState) Counts() map[string]int {
	return map[string]int{
		"emails":        len(s.Emails),
		"phones":        len(s.Phones),
		"social_links":  len(s.SocialLinks),
		"serp_linkedin": len(s.SERPLinkedIn),
	}
}
