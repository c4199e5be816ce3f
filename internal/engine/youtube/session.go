package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// IsURL reports whether s looks like a YouTube URL rather than a bare id.
func IsURL(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}

// WatchURL returns the canonical watch page for a video id or a recognised
// video URL. Other URLs pass through.
func WatchURL(idOrURL string) string {
	return watchURL(defaultBaseURL, idOrURL)
}

// VideoID returns the video id of a watch, shorts or youtu.be URL. Bare ids
// and unrecognised URLs are returned trimmed.
func VideoID(idOrURL string) string {
	s := strings.TrimSpace(idOrURL)
	if !IsURL(s) {
		return s
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimSpace(idOrURL)
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case strings.HasSuffix(u.Host, "youtu.be") && parts[0] != "":
		return parts[0]
	case len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live"):
		return parts[1]
	}
	return strings.TrimSpace(idOrURL)
}

func watchURL(base, idOrURL string) string {
	id := VideoID(idOrURL)
	if IsURL(id) {
		return id
	}
	return base + "/watch?v=" + url.QueryEscape(id)
}

// Bootstrap loads the watch page, passes the consent interstitial when one
// is served, and extracts the runtime config and initial data. A non-empty
// language overrides INNERTUBE_CONTEXT.client.hl.
func (d *Downloader) Bootstrap(ctx context.Context, idOrURL, language string) (*Session, error) {
	if strings.TrimSpace(idOrURL) == "" {
		return nil, ErrNoVideo
	}
	pageURL := watchURL(d.baseURL, idOrURL)

	doc, finalURL, err := d.fetchPage(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, fmt.Errorf("youtube: fetch watch page: %w", err)
	}

	if strings.Contains(finalURL, "consent") {
		engine.IncrConsentHandshakes()
		slog.Debug("youtube: consent interstitial", slog.String("url", finalURL))
		saveURL := d.consentURL + "?" + consentParams(doc, pageURL).Encode()
		doc, _, err = d.fetchPage(ctx, http.MethodPost, saveURL)
		if err != nil {
			return nil, fmt.Errorf("youtube: consent handshake: %w", err)
		}
	}

	cfg, err := extractRuntimeConfig(doc)
	if err != nil {
		return nil, err
	}
	if language != "" {
		cfg.SetLanguage(language)
	}
	initial, err := extractInitialData(doc)
	if err != nil {
		return nil, err
	}

	return &Session{URL: pageURL, Config: cfg, Initial: initial}, nil
}

// fetchPage performs one browser-like request and returns the body and the
// URL reached after redirects.
func (d *Downloader) fetchPage(ctx context.Context, method, rawURL string) ([]byte, string, error) {
	engine.IncrPageFetches()
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	d.setHeaders(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &engine.StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Request.URL.String(), nil
}

func (d *Downloader) setHeaders(req *http.Request) {
	for k, v := range engine.BrowserHeaders(d.userAgent) {
		req.Header[k] = v
	}
	req.Header.Set("Cookie", consentCookie)
}
