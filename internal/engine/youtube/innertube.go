package youtube

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/tree"
)

// call POSTs one continuation and decodes the response. Any failure
// (exhausted retries, a terminal status, an undecodable body) comes back
// as ok=false, which the pager treats as the end of the stream.
func (d *Downloader) call(ctx context.Context, cfg *RuntimeConfig, cont Continuation) (*tree.Value, bool) {
	engine.IncrContinuationRequests()
	log := slog.With(slog.String("api", cont.APIURL), slog.String("token", engine.TruncateRunes(cont.Token, 24, "…")))

	u, err := url.Parse(d.baseURL + cont.APIURL)
	if err != nil {
		engine.IncrContinuationFailures()
		log.Warn("youtube: bad continuation url", slog.Any("error", err))
		return nil, false
	}
	q := u.Query()
	q.Set("key", cfg.APIKey())
	u.RawQuery = q.Encode()

	body, err := tree.NewMap(
		tree.E("context", cfg.Context()),
		tree.E("continuation", tree.String(cont.Token)),
	).MarshalJSON()
	if err != nil {
		engine.IncrContinuationFailures()
		log.Warn("youtube: encode continuation body", slog.Any("error", err))
		return nil, false
	}

	resp, err := engine.RetryHTTP(ctx, d.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		d.setHeaders(req)
		req.Header.Set("Content-Type", "application/json")
		return d.client.Do(req)
	})
	if err != nil {
		engine.IncrContinuationFailures()
		log.Warn("youtube: continuation failed", slog.Any("error", err))
		return nil, false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		engine.IncrContinuationFailures()
		log.Warn("youtube: read continuation", slog.Any("error", err))
		return nil, false
	}
	root, err := tree.Parse(data)
	if err != nil || root.Len() == 0 {
		engine.IncrContinuationFailures()
		log.Warn("youtube: unusable continuation response", slog.Int("bytes", len(data)), slog.Any("error", err))
		return nil, false
	}
	return root, true
}
