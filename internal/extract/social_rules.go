// internal/extract/social_rules.go
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

// PlatformRule is one platform's URL classification entry: accept patterns
// tried in order, reject patterns for non-profile sub-paths, reserved path
// segments that look like usernames but are site chrome, and a canonicalizer
// that rebuilds the fixed-form URL. One record per platform replaces
// per-platform dispatch; the engine just walks the table.
type PlatformRule struct {
	Platform types.Platform
	Accept   []*regexp.Regexp
	Reject   []*regexp.Regexp
	Reserved map[string]struct{}
	// MinUsernameLen is the minimum identity length accepted.
	MinUsernameLen int
	// Keywords are anchor-text hints that boost a candidate's score.
	Keywords []string
	// Canonicalize extracts the identity token from url and rebuilds the
	// canonical URL. ok is false when no identity can be recovered.
	Canonicalize func(url string) (canonical, username string, ok bool)
	// PreferLink breaks ties within a platform group before score order.
	// Negative means a ranks above b.
	PreferLink func(a, b string) int
}

func reserved(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	waPhoneRe        = regexp.MustCompile(`(?i)(?:wa\.me/|phone=)(\d+)`)
	instagramUserRe  = regexp.MustCompile(`(?i)instagram\.com/([a-zA-Z0-9_.]+)`)
	linkedinInRe     = regexp.MustCompile(`(?i)linkedin\.com/in/([a-zA-Z0-9_-]+)`)
	linkedinCoRe     = regexp.MustCompile(`(?i)linkedin\.com/company/([a-zA-Z0-9_-]+)`)
	tiktokUserRe     = regexp.MustCompile(`(?i)tiktok\.com/@([a-zA-Z0-9_.]+)`)
	youtubeHandleRe  = regexp.MustCompile(`(?i)youtube\.com/@([a-zA-Z0-9_-]+)`)
	youtubeChannelRe = regexp.MustCompile(`(?i)youtube\.com/channel/([a-zA-Z0-9_-]+)`)
	youtubeLegacyRe  = regexp.MustCompile(`(?i)youtube\.com/(?:c|user)/([a-zA-Z0-9_-]+)`)
	twitterUserRe    = regexp.MustCompile(`(?i)(?:twitter|x)\.com/([a-zA-Z0-9_]+)`)
	facebookIDRe     = regexp.MustCompile(`(?i)facebook\.com/profile\.php\?id=(\d+)`)
	facebookPageRe   = regexp.MustCompile(`(?i)(?:facebook|fb)\.com/([a-zA-Z0-9.]+)`)
)

// PlatformRules returns the fixed classification table in priority order.
// Hand-curated URL shapes drift as platforms change; treat the table as
// swappable data, not ground truth.
func PlatformRules() []PlatformRule {
	return []PlatformRule{
		{
			Platform: types.PlatformWhatsApp,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:api\.)?whatsapp\.com/send\?phone=(\d+)`),
				regexp.MustCompile(`(?i)(?:https?://)?wa\.me/(\d+)`),
			},
			MinUsernameLen: 10,
			Keywords:       []string{"whatsapp", "wa", "chat"},
			Canonicalize: func(url string) (string, string, bool) {
				m := waPhoneRe.FindStringSubmatch(url)
				if m == nil {
					return "", "", false
				}
				return "https://wa.me/" + m[1], m[1], true
			},
		},
		{
			Platform: types.PlatformInstagram,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([a-zA-Z0-9_.]+)/?$`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([a-zA-Z0-9_.]+)\?`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagr\.am/([a-zA-Z0-9_.]+)`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)instagram\.com/p/`),
				regexp.MustCompile(`(?i)instagram\.com/reel/`),
				regexp.MustCompile(`(?i)instagram\.com/reels/`),
				regexp.MustCompile(`(?i)instagram\.com/stories/`),
				regexp.MustCompile(`(?i)instagram\.com/explore/`),
				regexp.MustCompile(`(?i)instagram\.com/direct/`),
				regexp.MustCompile(`(?i)instagram\.com/accounts/`),
				regexp.MustCompile(`(?i)instagram\.com/tv/`),
				regexp.MustCompile(`(?i)instagram\.com/about/`),
				regexp.MustCompile(`(?i)instagram\.com/legal/`),
				regexp.MustCompile(`(?i)instagram\.com/api/`),
				regexp.MustCompile(`(?i)\?__a=1`),
			},
			Reserved: reserved("p", "reel", "reels", "stories", "explore", "direct",
				"accounts", "tv", "about", "legal", "api", "help", "privacy", "terms"),
			MinUsernameLen: 1,
			Keywords:       []string{"instagram", "insta", "ig"},
			Canonicalize: func(url string) (string, string, bool) {
				m := instagramUserRe.FindStringSubmatch(url)
				if m == nil {
					return "", "", false
				}
				username := strings.ToLower(m[1])
				return "https://www.instagram.com/" + username, username, true
			},
		},
		{
			Platform: types.PlatformLinkedIn,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/([a-zA-Z0-9_-]+)`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/company/([a-zA-Z0-9_-]+)`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)linkedin\.com/feed`),
				regexp.MustCompile(`(?i)linkedin\.com/jobs`),
				regexp.MustCompile(`(?i)linkedin\.com/posts/`),
				regexp.MustCompile(`(?i)linkedin\.com/pulse/`),
				regexp.MustCompile(`(?i)linkedin\.com/groups/`),
				regexp.MustCompile(`(?i)linkedin\.com/learning`),
				regexp.MustCompile(`(?i)linkedin\.com/messaging`),
				regexp.MustCompile(`(?i)linkedin\.com/notifications`),
				regexp.MustCompile(`(?i)linkedin\.com/mynetwork`),
				regexp.MustCompile(`(?i)linkedin\.com/search`),
				regexp.MustCompile(`(?i)linkedin\.com/help`),
				regexp.MustCompile(`(?i)linkedin\.com/legal`),
				regexp.MustCompile(`(?i)linkedin\.com/?$`),
				regexp.MustCompile(`(?i)linkedin\.com/\?`),
			},
			MinUsernameLen: 2,
			Keywords:       []string{"linkedin"},
			Canonicalize: func(url string) (string, string, bool) {
				if m := linkedinInRe.FindStringSubmatch(url); m != nil {
					username := strings.ToLower(m[1])
					return "https://www.linkedin.com/in/" + username, username, true
				}
				if m := linkedinCoRe.FindStringSubmatch(url); m != nil {
					username := strings.ToLower(m[1])
					return "https://www.linkedin.com/company/" + username, "company/" + username, true
				}
				return "", "", false
			},
			// Personal profiles outrank company pages, all else equal.
			PreferLink: func(a, b string) int {
				aPersonal := strings.Contains(a, "/in/")
				bPersonal := strings.Contains(b, "/in/")
				switch {
				case aPersonal && !bPersonal:
					return -1
				case !aPersonal && bPersonal:
					return 1
				default:
					return 0
				}
			},
		},
		{
			Platform: types.PlatformTikTok,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?tiktok\.com/@([a-zA-Z0-9_.]+)`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)tiktok\.com/video/`),
				regexp.MustCompile(`(?i)tiktok\.com/t/`),
				regexp.MustCompile(`(?i)tiktok\.com/music/`),
				regexp.MustCompile(`(?i)tiktok\.com/tag/`),
				regexp.MustCompile(`(?i)tiktok\.com/discover`),
				regexp.MustCompile(`(?i)tiktok\.com/foryou`),
				regexp.MustCompile(`(?i)tiktok\.com/following`),
				regexp.MustCompile(`(?i)tiktok\.com/live`),
			},
			MinUsernameLen: 1,
			Keywords:       []string{"tiktok", "tik tok"},
			Canonicalize: func(url string) (string, string, bool) {
				m := tiktokUserRe.FindStringSubmatch(url)
				if m == nil {
					return "", "", false
				}
				username := strings.ToLower(m[1])
				return "https://www.tiktok.com/@" + username, username, true
			},
		},
		{
			Platform: types.PlatformYouTube,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/@([a-zA-Z0-9_-]+)`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/channel/([a-zA-Z0-9_-]+)`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/c/([a-zA-Z0-9_-]+)`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/user/([a-zA-Z0-9_-]+)`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)youtube\.com/watch`),
				regexp.MustCompile(`(?i)youtube\.com/shorts/`),
				regexp.MustCompile(`(?i)youtube\.com/playlist`),
				regexp.MustCompile(`(?i)youtube\.com/results`),
				regexp.MustCompile(`(?i)youtube\.com/feed`),
				regexp.MustCompile(`(?i)youtube\.com/embed`),
				regexp.MustCompile(`(?i)youtube\.com/live`),
				regexp.MustCompile(`(?i)youtube\.com/gaming`),
				regexp.MustCompile(`(?i)youtu\.be/[a-zA-Z0-9_-]+`),
			},
			MinUsernameLen: 1,
			Keywords:       []string{"youtube", "yt", "subscribe"},
			Canonicalize: func(url string) (string, string, bool) {
				// Handle and legacy paths collapse to @handle; channel IDs
				// keep the /channel/ form because they are not handles.
				if m := youtubeHandleRe.FindStringSubmatch(url); m != nil {
					return "https://www.youtube.com/@" + m[1], m[1], true
				}
				if m := youtubeChannelRe.FindStringSubmatch(url); m != nil {
					return "https://www.youtube.com/channel/" + m[1], m[1], true
				}
				if m := youtubeLegacyRe.FindStringSubmatch(url); m != nil {
					return "https://www.youtube.com/@" + m[1], m[1], true
				}
				return "", "", false
			},
		},
		{
			Platform: types.PlatformTwitter,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter|x)\.com/([a-zA-Z0-9_]+)/?$`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter|x)\.com/([a-zA-Z0-9_]+)\?`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/.*/status/`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/share`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/intent/`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/home`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/explore`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/search`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/notifications`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/messages`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/settings`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/i/`),
				regexp.MustCompile(`(?i)(?:twitter|x)\.com/hashtag/`),
			},
			Reserved: reserved("home", "explore", "search", "notifications", "messages",
				"settings", "i", "intent", "share", "hashtag", "login", "signup"),
			MinUsernameLen: 1,
			Keywords:       []string{"twitter", "tweet"},
			Canonicalize: func(url string) (string, string, bool) {
				m := twitterUserRe.FindStringSubmatch(url)
				if m == nil {
					return "", "", false
				}
				username := strings.ToLower(m[1])
				return "https://x.com/" + username, username, true
			},
		},
		{
			Platform: types.PlatformFacebook,
			Accept: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:facebook|fb)\.com/([a-zA-Z0-9.]+)/?$`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:facebook|fb)\.com/([a-zA-Z0-9.]+)\?`),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/profile\.php\?id=(\d+)`),
			},
			Reject: []*regexp.Regexp{
				regexp.MustCompile(`(?i)facebook\.com/sharer`),
				regexp.MustCompile(`(?i)facebook\.com/share`),
				regexp.MustCompile(`(?i)facebook\.com/watch`),
				regexp.MustCompile(`(?i)facebook\.com/reel`),
				regexp.MustCompile(`(?i)facebook\.com/photo`),
				regexp.MustCompile(`(?i)facebook\.com/posts/`),
				regexp.MustCompile(`(?i)facebook\.com/events/`),
				regexp.MustCompile(`(?i)facebook\.com/groups/`),
				regexp.MustCompile(`(?i)facebook\.com/marketplace`),
				regexp.MustCompile(`(?i)facebook\.com/gaming`),
				regexp.MustCompile(`(?i)facebook\.com/stories`),
				regexp.MustCompile(`(?i)facebook\.com/login`),
				regexp.MustCompile(`(?i)facebook\.com/help`),
				regexp.MustCompile(`(?i)facebook\.com/policies`),
				regexp.MustCompile(`(?i)facebook\.com/privacy`),
				regexp.MustCompile(`(?i)facebook\.com/dialog/`),
			},
			Reserved: reserved("login", "share", "sharer", "help", "policies", "privacy",
				"watch", "marketplace", "groups", "events", "pages", "profile.php",
				"dialog", "gaming", "stories"),
			MinUsernameLen: 1,
			Keywords:       []string{"facebook", "fb"},
			Canonicalize: func(url string) (string, string, bool) {
				if m := facebookIDRe.FindStringSubmatch(url); m != nil {
					return fmt.Sprintf("https://www.facebook.com/profile.php?id=%s", m[1]), m[1], true
				}
				if m := facebookPageRe.FindStringSubmatch(url); m != nil {
					page := strings.ToLower(m[1])
					return "https://www.facebook.com/" + page, page, true
				}
				return "", "", false
			},
		},
	}
}

// PlatformKeywordHints maps each platform to the anchor-text keywords that
// add a repeat-signal bonus during the keyword scoring pass.
func PlatformKeywordHints(rules []PlatformRule) map[types.Platform][]string {
	hints := make(map[types.Platform][]string, len(rules))
	for _, r := range rules {
		hints[r.Platform] = r.Keywords
	}
	return hints
}
