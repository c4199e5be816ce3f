package ytserver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/archive"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
)

const maxLimit = 2000

func registerComments(server *mcp.Server, dl *youtube.Downloader, sink archive.Sink) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_comments",
		Description: "Download comments and replies of a YouTube video without an API key. Returns comments in thread order (each top-level page before the replies it announced), newest first by default. Compact output: cid, user, text, time, data (DD-MM-YYYY), respostas. Set full=true for complete records.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CommentsInput) (*mcp.CallToolResult, CommentsOutput, error) {
		out, err := fetchComments(ctx, dl, sink, input)
		if err != nil {
			return nil, CommentsOutput{}, err
		}
		return nil, out, nil
	})
}

func fetchComments(ctx context.Context, dl *youtube.Downloader, sink archive.Sink, input CommentsInput) (CommentsOutput, error) {
	if strings.TrimSpace(input.Video) == "" {
		return CommentsOutput{}, errors.New("video is required")
	}
	sortBy, err := youtube.ParseSortOrder(input.Sort)
	if err != nil {
		return CommentsOutput{}, err
	}

	req := youtube.NewRequest(input.Video)
	req.SortBy = sortBy
	req.Language = toolutil.NormLang(input.Language)
	if input.Limit > 0 {
		req.Limit = min(input.Limit, maxLimit)
	}
	video := youtube.VideoID(input.Video)

	cacheKey := engine.CacheKey("youtube_comments", video, req.Language, sortBy.String(), strconv.Itoa(req.Limit))
	comments, ok := toolutil.CacheLoadJSON[[]youtube.Comment](ctx, cacheKey)
	if !ok {
		err := engine.TrackOperation(ctx, "youtube_comments", 2*time.Minute, func(ctx context.Context) error {
			var err error
			comments, err = dl.Collect(ctx, req)
			return err
		})
		if err != nil {
			return CommentsOutput{}, err
		}
		if len(comments) > 0 {
			toolutil.CacheStoreJSON(ctx, cacheKey, comments)
			if sink != nil {
				if err := sink.Write(ctx, video, comments); err != nil {
					slog.Warn("youtube_comments: archive failed", slog.String("video", video), slog.Any("error", err))
				}
			}
		}
	}

	out := CommentsOutput{Video: video, Sort: sortBy.String(), Count: len(comments)}
	if input.Full {
		out.Records = comments
		return out, nil
	}
	out.Comments = make([]youtube.PublicComment, len(comments))
	for i, c := range comments {
		out.Comments[i] = dl.Public(c)
	}
	return out, nil
}
