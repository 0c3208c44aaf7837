// Package page downloads HTML documents for the extraction engines.
package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"golang.org/x/net/html/charset"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 2 << 20

// StatusFailed is reported when no HTTP status was received.
const StatusFailed = 599

// Fetch issues a GET for rawURL with a browser-like identification and returns
// the body of a 2xx HTML/text response transcoded to UTF-8 from the charset
// declared in the Content-Type header or the document. The returned status is the upstream
// status code, or StatusFailed when the request never completed.
func Fetch(ctx context.Context, client *http.Client, rawURL, userAgent string) ([]byte, int, error) {
	target, err := helpers.ParseHTTPURL(rawURL)
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if ct := strings.ToLower(resp.Header.Get("Content-Type")); ct != "" && !strings.Contains(ct, "html") && !strings.HasPrefix(ct, "text/") {
		return nil, resp.StatusCode, fmt.Errorf("fetch %s: unsupported content type %q", rawURL, ct)
	}

	utf8Body, err := charset.NewReader(io.LimitReader(resp.Body, MaxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	body, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, resp.StatusCode, nil
}
