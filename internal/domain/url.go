package domain

import (
	"net/url"
	"strings"
)

// IsTrackable reports whether the URL uses a scheme the tracker records.
func IsTrackable(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// BaseDomain reduces a URL to its base domain: the hostname without a leading
// "www." label, cut down to its last two dot-separated labels. It is not
// public-suffix aware, so "news.bbc.co.uk" becomes "co.uk". The boolean is
// false when the URL cannot be parsed or has no host.
func BaseDomain(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], "."), true
	}
	return host, true
}
