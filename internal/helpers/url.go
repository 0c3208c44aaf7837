package helpers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ParseHTTPURL parses raw and accepts only absolute http(s) URLs with a host.
// Search providers occasionally return relative or javascript: links; those
// are rejected here before anything is fetched.
func ParseHTTPURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, errors.New("url missing host")
	}
	parsed.Fragment = ""
	return parsed, nil
}

// LinkHost returns the lower-cased host of raw without default ports and a
// leading "www.", or "" when raw is not a usable http(s) URL.
func LinkHost(raw string) string {
	u, err := ParseHTTPURL(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimSuffix(host, ":443")
	return strings.TrimPrefix(host, "www.")
}
