package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/tree"
)

// Continuation items under these targets belong to the top-level thread.
var topLevelTargets = map[string]bool{
	"comments-section":                        true,
	"engagement-panel-comments-section":       true,
	"shorts-engagement-panel-comments-section": true,
}

const replyTargetPrefix = "comment-replies-item"

// Paginate walks the continuation graph of sess and hands each response to
// fn as a Batch. It returns nil when the work list drains or a call yields
// no usable response; ErrSortSelection when sortBy cannot be applied; a
// *ServerError when a response carries an externalErrorMessage.
func (d *Downloader) Paginate(ctx context.Context, sess *Session, sortBy SortOrder, fn func(Batch) error) error {
	data := sess.Initial

	itemSection := tree.FindFirst(data, "itemSectionRenderer")
	if itemSection == nil || tree.FindFirst(itemSection, "continuationItemRenderer") == nil {
		slog.Info("youtube: comments are disabled or absent", slog.String("url", sess.URL))
		return nil
	}

	limiter := d.newLimiter()
	fetch := func(cont Continuation) (*tree.Value, bool) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, false
		}
		return d.call(ctx, sess.Config, cont)
	}

	menu := sortMenu(data)
	if len(menu) == 0 {
		// Newer layouts lazy-load the comments header, menu included.
		sectionList := tree.FindFirst(data, "sectionListRenderer")
		if cont, ok := parseContinuation(tree.FindFirst(sectionList, "continuationEndpoint")); ok {
			if resp, ok := fetch(cont); ok {
				menu = sortMenu(resp)
			}
		}
	}
	if len(menu) == 0 || sortBy < 0 || int(sortBy) >= len(menu) {
		return fmt.Errorf("%w: %d sort options, requested index %d", ErrSortSelection, len(menu), sortBy)
	}
	seed, ok := parseContinuation(menu[sortBy].Path("serviceEndpoint"))
	if !ok {
		return fmt.Errorf("%w: sort option %d has no endpoint", ErrSortSelection, sortBy)
	}

	var queue deque[Continuation]
	queue.PushBack(seed)
	for queue.Len() > 0 {
		cont, _ := queue.PopFront()
		resp, ok := fetch(cont)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			slog.Info("youtube: no usable response, stopping", slog.String("url", sess.URL), slog.Int("pending", queue.Len()))
			return nil
		}
		if msg := tree.FindFirst(resp, "externalErrorMessage"); msg != nil {
			if text := errorText(msg); text != "" {
				return &ServerError{Message: text}
			}
		}

		expand(resp, &queue)
		if err := fn(collectBatch(resp)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downloader) newLimiter() *rate.Limiter {
	if d.pageDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d.pageDelay), 1)
}

func sortMenu(v *tree.Value) []*tree.Value {
	return tree.FindFirst(v, "sortFilterSubMenuRenderer").Path("subMenuItems").Items()
}

// expand queues the continuations found in resp.
func expand(resp *tree.Value, q *deque[Continuation]) {
	actions := tree.FindAll(resp, "reloadContinuationItemsCommand")
	actions = append(actions, tree.FindAll(resp, "appendContinuationItemsAction")...)

	for _, action := range actions {
		target := action.Path("targetId").Str()
		for _, item := range action.Path("continuationItems").Items() {
			if topLevelTargets[target] {
				var found []Continuation
				for ep := range tree.Search(item, "continuationEndpoint") {
					if c, ok := parseContinuation(ep); ok {
						found = append(found, c)
					} else {
						slog.Debug("youtube: skipping malformed continuation endpoint", slog.String("target", target))
					}
				}
				q.PushFront(found...)
			}
			if strings.HasPrefix(target, replyTargetPrefix) && item.Has("continuationItemRenderer") {
				btn := tree.FindFirst(item, "buttonRenderer")
				if c, ok := parseContinuation(btn.Path("command")); ok {
					q.PushBack(c)
				}
			}
		}
	}
}

// collectBatch gathers the entity payloads the assembler joins.
func collectBatch(resp *tree.Value) Batch {
	b := Batch{
		Toolbar:     make(map[string]*tree.Value),
		Payments:    make(map[string]string),
		SurfaceKeys: make(map[string]string),
	}

	for p := range tree.Search(resp, "commentSurfaceEntityPayload") {
		if p.Has("pdgCommentChip") {
			b.Payments[p.Path("key").Str()] = tree.FindFirst(p, "simpleText").Str()
		}
	}
	if len(b.Payments) > 0 {
		for vm := range tree.Search(resp, "commentViewModel") {
			inner := vm.Path("commentViewModel")
			if key := inner.Path("commentSurfaceKey").Str(); key != "" {
				b.SurfaceKeys[key] = inner.Path("commentId").Str()
			}
		}
	}

	for p := range tree.Search(resp, "engagementToolbarStateEntityPayload") {
		b.Toolbar[p.Path("key").Str()] = p
	}

	b.Entities = tree.FindAll(resp, "commentEntityPayload")
	slices.Reverse(b.Entities)
	return b
}

// errorText renders an externalErrorMessage node, which is either a plain
// string or a runs/simpleText object.
func errorText(v *tree.Value) string {
	if !v.IsContainer() {
		return strings.TrimSpace(v.Str())
	}
	if s := tree.FindFirst(v, "simpleText"); s != nil {
		return strings.TrimSpace(s.Str())
	}
	var sb strings.Builder
	for _, run := range tree.FindFirst(v, "runs").Items() {
		sb.WriteString(run.Path("text").Str())
	}
	if sb.Len() > 0 {
		return strings.TrimSpace(sb.String())
	}
	raw, _ := v.MarshalJSON()
	return string(raw)
}
