package platform

import (
	"net/url"
	"strings"
)

// Platform names a recognized media site.
type Platform string

const (
	YouTube     Platform = "YouTube"
	TikTok      Platform = "TikTok"
	Instagram   Platform = "Instagram"
	Twitter     Platform = "Twitter/X"
	Facebook    Platform = "Facebook"
	Reddit      Platform = "Reddit"
	Vimeo       Platform = "Vimeo"
	Pinterest   Platform = "Pinterest"
	Dailymotion Platform = "Dailymotion"
	SoundCloud  Platform = "SoundCloud"
	Unknown     Platform = "Unknown"
)

// matchTable is checked in order; first hit wins. Entries do not overlap in
// practice, so ordering has no observable effect.
var matchTable = []struct {
	substr   string
	platform Platform
}{
	{"youtube.com", YouTube},
	{"youtu.be", YouTube},
	{"tiktok.com", TikTok},
	{"instagram.com", Instagram},
	{"twitter.com", Twitter},
	{"x.com", Twitter},
	{"facebook.com", Facebook},
	{"fb.watch", Facebook},
	{"reddit.com", Reddit},
	{"vimeo.com", Vimeo},
	{"pinterest.com", Pinterest},
	{"pin.it", Pinterest},
	{"dailymotion.com", Dailymotion},
	{"soundcloud.com", SoundCloud},
}

// Classify maps a URL string to a known platform or Unknown. Pure function.
func Classify(rawURL string) Platform {
	lower := strings.ToLower(rawURL)
	for _, entry := range matchTable {
		if strings.Contains(lower, entry.substr) {
			return entry.platform
		}
	}
	return Unknown
}

// Validate accepts a URL that is syntactically sound and maps to a known
// platform.
func Validate(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return Classify(rawURL) != Unknown
}
