package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "github.com/liss-h/embedbot embedbot/2.0"

const defaultFetchTimeout = 30 * time.Second

// NewHTTPClient builds the client shared by the plain-HTTP scrapers. A
// non-positive timeout falls back to 30s so no fetch can hang forever.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &http.Client{Timeout: timeout}
}

// wget issues a GET with the bot's version-bearing user agent. The caller
// owns the response body.
func wget(ctx context.Context, client *http.Client, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	return resp, nil
}

// wgetJSON fetches u and decodes the body as loose JSON.
func wgetJSON(ctx context.Context, client *http.Client, u string) (any, error) {
	resp, err := wget(ctx, client, u)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	return doc, nil
}

// wgetHTML fetches u and parses the body into a goquery document.
func wgetHTML(ctx context.Context, client *http.Client, u string) (*goquery.Document, error) {
	resp, err := wget(ctx, client, u)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	return doc, nil
}

// urlPathEndsWith reports whether the URL path, ignoring a trailing slash,
// ends with needle.
func urlPathEndsWith(u *url.URL, needle string) bool {
	return strings.HasSuffix(strings.TrimRight(u.Path, "/"), needle)
}

var imageExtensions = []string{
	".jpg", ".png", ".gif", ".tif", ".bmp", ".dib", ".jpeg", ".jpe", ".jfif", ".tiff", ".heic",
}

func urlPathEndsWithImageExtension(u *url.URL) bool {
	path := strings.TrimRight(u.Path, "/")
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// unescapeHTML undoes the HTML entity escaping reddit applies to selftext
// and comment bodies.
func unescapeHTML(s string) string {
	r := strings.NewReplacer(
		"&amp;", "&",
		"&gt;", ">",
		"&lt;", "<",
		"&quot;", `"`,
	)
	return r.Replace(s)
}

// unescapeURL undoes entity escaping inside URLs (reddit media_metadata).
func unescapeURL(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
