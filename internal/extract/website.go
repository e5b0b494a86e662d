// internal/extract/website.go
package extract

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Website detection is the highest false-positive-risk category: almost any
// external link looks plausible. The blacklists below plus a minimum score
// threshold keep only clearly homepage-shaped, low-noise URLs.
const (
	websiteMinScore   = 4
	maxWebsiteResults = 5
)

// websiteDomainBlacklist rejects CDN, analytics, ads, fonts, infrastructure
// and social-by-alias hostnames. Matched exact or as suffix.
var websiteDomainBlacklist = []string{
	// Search and ad ecosystem
	"google.com", "google.co", "google.in", "google.co.in", "google.co.uk",
	"googleapis.com", "gstatic.com", "googleusercontent.com",
	"googleadservices.com", "googlesyndication.com", "googletagmanager.com",
	"googletagservices.com", "googlevideo.com", "googleanalytics.com",
	"doubleclick.net", "adsense.com",

	// Standards bodies
	"w3.org", "schema.org", "xml.org", "json-ld.org",

	// CDNs and assets
	"cloudflare.com", "jsdelivr.net", "unpkg.com", "bootstrapcdn.com",
	"cdnjs.com", "fontawesome.com", "typekit.net",

	// Tracking and analytics
	"hotjar.com", "mouseflow.com", "clarity.ms", "newrelic.com",
	"segment.io", "segment.com", "mixpanel.com", "amplitude.com",
	"fullstory.com", "crazyegg.com", "inspectlet.com",

	// Ad networks
	"facebook.net", "fbcdn.net", "fbsbx.com",
	"amazon-adsystem.com", "serving-sys.com", "adsrvr.org",
	"criteo.com", "outbrain.com", "taboola.com", "bidswitch.net",

	// Hosting infrastructure
	"amazonaws.com", "digitalocean.com", "heroku.com",
	"netlify.com", "vercel.com", "pages.dev", "workers.dev",

	// Common system domains
	"gravatar.com", "wp.com", "wordpress.org", "wordpress.com",
	"w3schools.com", "mozilla.org",
	"apple.com", "microsoft.com", "windows.com", "office.com",
	"adobe.com", "paypal.com", "stripe.com", "razorpay.com",
	"recaptcha.net", "hcaptcha.com",

	// Social platforms (classified separately, never "website")
	"facebook.com", "fb.com", "fb.me",
	"instagram.com", "instagr.am", "cdninstagram.com",
	"twitter.com", "x.com", "t.co", "twimg.com",
	"linkedin.com", "licdn.com",
	"youtube.com", "youtu.be", "ytimg.com",
	"tiktok.com", "tiktokcdn.com",
	"whatsapp.com", "wa.me", "whatsapp.net",
	"pinterest.com", "pinimg.com",
	"snapchat.com", "snap.com",
	"reddit.com", "redd.it", "redditstatic.com",
	"telegram.org", "t.me",
	"discord.gg", "discord.com", "discordapp.com",

	// Link shorteners and bio pages
	"bit.ly", "bitly.com", "tinyurl.com", "short.io",
	"linktr.ee", "linkin.bio", "beacons.ai", "lnk.bio",
	"about.me", "carrd.co",

	// Support, email, review widgets
	"sentry.io", "bugsnag.com", "rollbar.com",
	"zendesk.com", "intercom.io", "drift.com", "tawk.to",
	"mailchimp.com", "sendgrid.com", "mailgun.com",
	"trustpilot.com", "yelp.com", "tripadvisor.com",
}

// websiteHostPatterns rejects infrastructure-shaped subdomains.
var websiteHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^cdn\.`),
	regexp.MustCompile(`(?i)\.cdn\.`),
	regexp.MustCompile(`(?i)^static\.`),
	regexp.MustCompile(`(?i)^assets\.`),
	regexp.MustCompile(`(?i)^img[0-9]*\.`),
	regexp.MustCompile(`(?i)^images\.`),
	regexp.MustCompile(`(?i)^media\.`),
	regexp.MustCompile(`(?i)^api\.`),
	regexp.MustCompile(`(?i)^ads?\.`),
	regexp.MustCompile(`(?i)^track(ing)?\.`),
	regexp.MustCompile(`(?i)^pixel\.`),
}

// websitePathBlacklist rejects URLs whose path is site plumbing rather than
// a homepage.
var websitePathBlacklist = []string{
	"/privacy", "/privacy-policy", "/terms", "/tos", "/legal", "/cookie",
	"/login", "/signup", "/register", "/signin", "/auth",
	"/wp-content", "/wp-includes", "/wp-admin", "/wp-json",
	"/ads", "/advert", "/sponsor",
	"/sharer", "/share", "/intent",
	"/api/", "/ajax/", "/cdn-cgi/",
	"/.well-known/", "/feed/", "/rss",
	"/cart", "/checkout", "/account", "/dashboard", "/admin",
}

var websiteFileExtensions = []string{
	".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".eot", ".pdf", ".zip", ".mp3", ".mp4",
}

// classifyWebsite decides whether rawURL qualifies as an external website
// candidate. It returns the normalized URL, the dedup key (full hostname),
// the www-stripped host used as identity, and the quality score. ok is false
// when the URL is blacklisted, same-host, asset-shaped, or under the score
// threshold.
func classifyWebsite(rawURL, pageHost string, baseScore int) (cleanURL, key, host string, score int, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "", "", "", 0, false
	}

	hostname := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	pathname := strings.ToLower(parsed.Path)

	if hostname == "" || !strings.Contains(hostname, ".") {
		return "", "", "", 0, false
	}
	if net.ParseIP(hostname) != nil {
		return "", "", "", 0, false
	}
	for _, blocked := range websiteDomainBlacklist {
		if hostname == blocked || strings.HasSuffix(hostname, "."+blocked) {
			return "", "", "", 0, false
		}
	}
	for _, pattern := range websiteHostPatterns {
		if pattern.MatchString(parsed.Hostname()) {
			return "", "", "", 0, false
		}
	}
	// Never list the page's own domain as an "other site".
	if pageHost != "" && hostname == pageHost {
		return "", "", "", 0, false
	}
	for _, ext := range websiteFileExtensions {
		if strings.HasSuffix(pathname, ext) {
			return "", "", "", 0, false
		}
	}
	for _, blocked := range websitePathBlacklist {
		if strings.Contains(pathname, blocked) {
			return "", "", "", 0, false
		}
	}

	score = baseScore
	isRoot := pathname == "/" || pathname == ""
	if isRoot {
		score += 6
	}
	if len(pathname) <= 20 {
		score += 3
	}
	switch queryLen := len(parsed.RawQuery); {
	case queryLen > 50:
		score -= 5
	case queryLen > 20:
		score -= 2
	}
	if len(pathname) > 50 {
		score -= 3
	}
	if score < websiteMinScore {
		return "", "", "", 0, false
	}

	if isRoot {
		cleanURL = "https://" + parsed.Hostname()
	} else {
		trimmed := strings.TrimSuffix(pathname, "/")
		cleanURL = "https://" + parsed.Hostname() + trimmed
	}
	return cleanURL, strings.ToLower(parsed.Hostname()), hostname, score, true
}
