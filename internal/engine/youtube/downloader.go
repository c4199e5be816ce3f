// Package youtube downloads the comment thread of a video by replaying the
// continuation tokens the watch page and the /youtubei/v1 endpoints hand out.
//
// No public API is involved: the session is bootstrapped from the ytcfg and
// ytInitialData blobs embedded in the watch page HTML, and every following
// page is a continuation POST.
package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

const (
	defaultBaseURL    = "https://www.youtube.com"
	defaultConsentURL = "https://consent.youtube.com/save"
	consentCookie     = "CONSENT=YES+cb"
	maxPageBytes      = 8 * 1024 * 1024
	maxResponseBytes  = 16 * 1024 * 1024
)

// Downloader fetches comment threads. It is safe to share between
// goroutines; each Stream call owns its own work list.
type Downloader struct {
	client     *http.Client
	baseURL    string
	consentURL string
	userAgent  string
	retry      engine.RetryConfig
	pageDelay  time.Duration
	dates      RelativeTime
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets the transport. The client should carry a cookie jar so
// the consent cookie survives between requests.
func WithHTTPClient(c *http.Client) Option { return func(d *Downloader) { d.client = c } }

// WithBaseURL points the downloader at another host (tests).
func WithBaseURL(u string) Option { return func(d *Downloader) { d.baseURL = u } }

// WithConsentURL overrides the consent-save endpoint.
func WithConsentURL(u string) Option { return func(d *Downloader) { d.consentURL = u } }

// WithUserAgent pins the User-Agent header.
func WithUserAgent(ua string) Option { return func(d *Downloader) { d.userAgent = ua } }

// WithRetry sets the per-call retry policy.
func WithRetry(rc engine.RetryConfig) Option { return func(d *Downloader) { d.retry = rc } }

// WithPageDelay sets the pause between continuation calls.
func WithPageDelay(delay time.Duration) Option { return func(d *Downloader) { d.pageDelay = delay } }

// WithRelativeTime sets the converter used for PublicComment.Date.
func WithRelativeTime(rt RelativeTime) Option { return func(d *Downloader) { d.dates = rt } }

// New creates a Downloader with a cookie-jar client and a browser User-Agent.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		baseURL:    defaultBaseURL,
		consentURL: defaultConsentURL,
		retry:      engine.DefaultRetryConfig,
		pageDelay:  100 * time.Millisecond,
		dates:      NewRelativeTime(""),
	}
	for _, o := range opts {
		o(d)
	}
	if d.client == nil {
		jar, _ := cookiejar.New(nil)
		d.client = &http.Client{Timeout: 30 * time.Second, Jar: jar}
	}
	if d.userAgent == "" {
		d.userAgent = engine.RandomUserAgent()
	}
	return d
}

// NewFromConfig builds a Downloader from engine.Cfg.
func NewFromConfig() *Downloader {
	opts := []Option{
		WithRetry(engine.RetryConfigFromCfg()),
		WithPageDelay(engine.Cfg.PageDelay),
		WithRelativeTime(NewRelativeTime(engine.Cfg.Timezone)),
	}
	if engine.Cfg.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(engine.Cfg.HTTPClient))
	}
	return New(opts...)
}

// Stream downloads the thread of idOrURL and calls fn for every comment in
// order. A page without embedded data yields nothing and no error. An error
// returned by fn stops the run and is returned as-is.
func (d *Downloader) Stream(ctx context.Context, idOrURL string, sortBy SortOrder, language string, fn func(Comment) error) error {
	sess, err := d.Bootstrap(ctx, idOrURL, language)
	if errors.Is(err, ErrExtraction) {
		engine.IncrExtractionFailures()
		slog.Warn("youtube: page data not found, returning no comments", slog.String("url", WatchURL(idOrURL)), slog.Any("error", err))
		return nil
	}
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	return d.Paginate(ctx, sess, sortBy, func(b Batch) error {
		comments := Assemble(b)
		engine.AddCommentsEmitted(len(comments))
		for _, c := range comments {
			if _, dup := seen[c.CID]; dup {
				continue
			}
			seen[c.CID] = struct{}{}
			slog.Debug("youtube: comment",
				slog.String("cid", c.CID),
				slog.Bool("reply", c.Reply),
				slog.String("text", engine.TruncateRunes(c.Text, 60, "…")))
			if err := fn(c); err != nil {
				return err
			}
		}
		return nil
	})
}

// Comments collects the full thread.
func (d *Downloader) Comments(ctx context.Context, idOrURL string, sortBy SortOrder, language string) ([]Comment, error) {
	var out []Comment
	err := d.Stream(ctx, idOrURL, sortBy, language, func(c Comment) error {
		out = append(out, c)
		return nil
	})
	return out, err
}
