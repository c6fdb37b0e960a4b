package collector

import (
	"regexp"
	"strings"
)

// socialPatterns match Instagram posts, reels and username-scoped posts.
// They anchor at the start only, so query strings and trailing paths pass.
var socialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/p/[\w-]+/?`),
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/reel/[\w-]+/?`),
	regexp.MustCompile(`^https?://(www\.)?instagram\.com/[\w.]+/p/[\w-]+/?`),
}

// SocialURLError is shown beside an invalid URL draft.
const SocialURLError = "Please enter a valid Instagram post or reel URL"

// ExampleURLs are shown as hints in the social tab.
var ExampleURLs = []string{
	"https://www.instagram.com/p/ABC123xyz/",
	"https://www.instagram.com/reel/XYZ789abc/",
}

// ValidateSocialURL reports whether u is an Instagram post or reel URL.
// A blank draft is valid so the UI stays neutral until the user types.
func ValidateSocialURL(u string) bool {
	if strings.TrimSpace(u) == "" {
		return true
	}
	for _, p := range socialPatterns {
		if p.MatchString(u) {
			return true
		}
	}
	return false
}
