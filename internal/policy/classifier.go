package policy

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/modtools/tubeguard/internal/domain"
)

// Hostnames that count as YouTube. Subdomains (www., m., music.) match via
// suffix on the hostname component, never via raw substring, so domains like
// notyoutube.com or youtube.com.evil.example stay clean.
var targetHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
}

// Pulls URL-shaped tokens out of free text: scheme-prefixed links, www.
// links, and bare references to the known domains (common in markdown). The
// leading group requires start-of-text or a non-hostname rune so a token
// embedded in a longer domain (notyoutube.com, myyoutu.be) never matches.
var linkPattern = regexp.MustCompile(`(?i)(?:^|[^a-z0-9.-])((?:https?://|www\.|youtube\.com/|youtu\.be/)[^\s<>()"'\]]+)`)

// IsTargetLink reports whether a post references YouTube. Link submissions
// are judged on their URL; self posts and comments on their body text. Pure,
// no network access.
func IsTargetLink(p domain.Post) bool {
	if p.Kind == domain.KindSubmission && !p.IsSelf && p.URL != "" {
		return isTargetURL(p.URL)
	}
	return containsTargetLink(p.Content())
}

func containsTargetLink(text string) bool {
	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		if isTargetURL(m[1]) {
			return true
		}
	}
	return false
}

func isTargetURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return matchesTargetHost(u.Hostname())
}

func matchesTargetHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, target := range targetHosts {
		if host == target || strings.HasSuffix(host, "."+target) {
			return true
		}
	}
	return false
}
