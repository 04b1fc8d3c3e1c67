// Package youtube is the single source of truth for YouTube URL handling.
// Player embedding, suggestion scoping and URL validation all go through the
// same matcher so they can never disagree about which video a URL names.
package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// IDLength is the length of a YouTube video identifier.
const IDLength = 11

// idPatterns covers the conventional URL shapes in priority order. The first
// capturing match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/v/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`/u/\w+/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video identifier out of arbitrary
// text. Returns ok=false when no supported pattern matches; it never panics
// on malformed input.
func ExtractVideoID(text string) (string, bool) {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

var allowedHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// ValidateWatchURL checks that raw is a plausible YouTube video URL. The two
// rejection reasons are distinct so callers can surface a specific message.
func ValidateWatchURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("video URL cannot be empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		// Bare "youtu.be/..." without a scheme still counts.
		u, err = url.Parse("https://" + trimmed)
	}
	if err != nil || !allowedHosts[strings.ToLower(u.Host)] {
		return fmt.Errorf("not a valid YouTube URL")
	}

	if _, ok := ExtractVideoID(trimmed); !ok {
		return fmt.Errorf("not a valid YouTube URL")
	}

	return nil
}

// WatchURL builds the canonical watch URL for a video identifier.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// EmbedURL builds the embeddable player URL for a video identifier.
func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

// ThumbnailURL derives the deterministic medium-quality thumbnail for a video.
// Also the client-side fallback when a suggestion's own thumbnail fails to load.
func ThumbnailURL(id string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", id)
}
