package youtube

import (
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/tree"
)

const (
	replySeparator = '.'
	heartedState   = "TOOLBAR_HEART_STATE_HEARTED"
)

// Assemble joins each comment entity of b with its toolbar state and paid
// overlay. Entities missing an id, a body or an author are skipped.
func Assemble(b Batch) []Comment {
	out := make([]Comment, 0, len(b.Entities))

	var paid map[string]string
	if len(b.Payments) > 0 {
		paid = make(map[string]string, len(b.Payments))
		for surface, text := range b.Payments {
			if cid := b.SurfaceKeys[surface]; cid != "" {
				paid[cid] = text
			}
		}
	}

	for _, e := range b.Entities {
		c, ok := assembleOne(e, b.Toolbar)
		if !ok {
			engine.IncrRecordsSkipped()
			slog.Debug("youtube: skipping malformed comment entity", slog.String("key", e.Path("key").Str()))
			continue
		}
		if text, ok := paid[c.CID]; ok {
			c.Paid = text
		}
		out = append(out, c)
	}
	return out
}

func assembleOne(e *tree.Value, toolbars map[string]*tree.Value) (Comment, bool) {
	props := e.Path("properties")
	author := e.Path("author")

	cid := props.Path("commentId").Str()
	content := props.Path("content", "content")
	name := author.Path("displayName")
	if cid == "" || content == nil || content.IsContainer() || name == nil {
		return Comment{}, false
	}

	toolbar := toolbars[props.Path("toolbarStateKey").Str()]
	votes := strings.TrimSpace(e.Path("toolbar", "likeCountNotliked").Str())
	if votes == "" {
		votes = "0"
	}

	c := Comment{
		CID:     cid,
		Text:    content.Str(),
		Time:    props.Path("publishedTime").Str(),
		Author:  name.Str(),
		Channel: author.Path("channelId").Str(),
		Votes:   votes,
		Replies: e.Path("toolbar", "replyCount").Str(),
		Photo:   author.Path("avatarThumbnailUrl").Str(),
		Heart:   toolbar.Path("heartState").Str() == heartedState,
		Reply:   strings.IndexByte(cid, replySeparator) >= 0,
	}
	if ts, ok := parseTimestamp(c.Time); ok {
		c.TimeParsed = &ts
	}
	return c, true
}

// parseTimestamp parses an absolute published-time text such as
// "2024-03-01" or "Mar 1, 2024 (edited)". Relative phrases fail and the
// field is omitted.
func parseTimestamp(s string) (time.Time, bool) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
