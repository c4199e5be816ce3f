package youtube

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// DefaultLimit caps GetComments when Request.Limit is not set.
const DefaultLimit = 50

var errLimitReached = errors.New("limit reached")

// Request describes one GetComments call.
type Request struct {
	Video    string // id or URL
	Limit    int
	Language string
	SortBy   SortOrder
}

// NewRequest returns a request with the configured defaults: newest first,
// engine.Cfg.Language and engine.Cfg.DefaultLimit.
func NewRequest(video string) Request {
	limit := engine.Cfg.DefaultLimit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Request{
		Video:    video,
		Limit:    limit,
		Language: engine.NormLang(""),
		SortBy:   SortRecent,
	}
}

// Collect downloads up to req.Limit comments. Pagination stops as soon as
// the limit is reached. Hard failures are logged and returned; a page
// without comment data yields an empty slice.
func (d *Downloader) Collect(ctx context.Context, req Request) ([]Comment, error) {
	video := strings.TrimSpace(req.Video)
	if video == "" {
		return nil, ErrNoVideo
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]Comment, 0, min(limit, 100))
	err := d.Stream(ctx, video, req.SortBy, req.Language, func(c Comment) error {
		out = append(out, c)
		if len(out) >= limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		slog.Error("youtube: get comments failed",
			slog.String("video", video),
			slog.String("sort", req.SortBy.String()),
			slog.Any("error", err))
		return nil, err
	}
	return out, nil
}

// GetComments is Collect reshaped to PublicComment.
func (d *Downloader) GetComments(ctx context.Context, req Request) ([]PublicComment, error) {
	comments, err := d.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]PublicComment, len(comments))
	for i, c := range comments {
		out[i] = d.Public(c)
	}
	return out, nil
}

// Public reshapes c, converting its relative published time to a date.
func (d *Downloader) Public(c Comment) PublicComment {
	return PublicComment{
		CID:     c.CID,
		User:    c.Author,
		Text:    c.Text,
		Time:    c.Time,
		Date:    d.dates.Convert(c.Time),
		Replies: c.Replies,
	}
}
