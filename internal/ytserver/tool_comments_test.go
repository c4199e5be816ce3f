package ytserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

const (
	testPage = `<html><script>ytcfg.set({"INNERTUBE_API_KEY":"k","INNERTUBE_CONTEXT":{"client":{"hl":"en"}}});</script>` +
		`<script>var ytInitialData = {"itemSectionRenderer":{"contents":[{"continuationItemRenderer":{}}]},` +
		`"sortFilterSubMenuRenderer":{"subMenuItems":[` +
		`{"serviceEndpoint":{"commandMetadata":{"webCommandMetadata":{"apiUrl":"/youtubei/v1/next"}},"continuationCommand":{"token":"TOP"}}},` +
		`{"serviceEndpoint":{"commandMetadata":{"webCommandMetadata":{"apiUrl":"/youtubei/v1/next"}},"continuationCommand":{"token":"NEW"}}}]}};</script></html>`
	testNext = `{"frameworkUpdates":{"entityBatchUpdate":{"mutations":[` +
		`{"payload":{"commentEntityPayload":{"properties":{"commentId":"Ugy1","content":{"content":"one"},"publishedTime":"há 2 dias"},"author":{"displayName":"@a"},"toolbar":{"replyCount":"4"}}}},` +
		`{"payload":{"commentEntityPayload":{"properties":{"commentId":"Ugy2","content":{"content":"two"},"publishedTime":"há 1 dia"},"author":{"displayName":"@b"},"toolbar":{"replyCount":""}}}}` +
		`]}}}`
)

type recordingSink struct {
	video  string
	writes int
}

func (s *recordingSink) Write(_ context.Context, video string, comments []youtube.Comment) error {
	s.video = video
	s.writes++
	return nil
}

func (s *recordingSink) Close() error { return nil }

func newTestDownloader(t *testing.T) (*youtube.Downloader, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPage))
	})
	mux.HandleFunc("/youtubei/v1/next", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(testNext))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dl := youtube.New(
		youtube.WithHTTPClient(srv.Client()),
		youtube.WithBaseURL(srv.URL),
		youtube.WithRetry(engine.RetryConfig{MaxTries: 1, Delay: time.Millisecond}),
		youtube.WithPageDelay(0),
	)
	return dl, &calls
}

func TestFetchCommentsCompactAndCached(t *testing.T) {
	engine.Init(engine.Defaults())
	engine.InitCache("", time.Minute, 100, time.Minute)
	dl, calls := newTestDownloader(t)
	sink := &recordingSink{}
	ctx := context.Background()

	out, err := fetchComments(ctx, dl, sink, CommentsInput{Video: "https://youtu.be/vid123", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "vid123", out.Video)
	assert.Equal(t, "recent", out.Sort)
	require.Equal(t, 2, out.Count)
	require.Len(t, out.Comments, 2)
	assert.Equal(t, "Ugy1", out.Comments[0].CID)
	assert.Equal(t, "@a", out.Comments[0].User)
	assert.Equal(t, "4", out.Comments[0].Replies)
	assert.Len(t, out.Comments[0].Date, len("02-01-2006"))
	assert.Nil(t, out.Records)
	assert.Equal(t, "vid123", sink.video)
	assert.EqualValues(t, 1, calls.Load())

	full, err := fetchComments(ctx, dl, sink, CommentsInput{Video: "vid123", Limit: 10, Full: true})
	require.NoError(t, err)
	require.Len(t, full.Records, 2)
	assert.Equal(t, "@b", full.Records[1].Author)
	assert.EqualValues(t, 1, calls.Load(), "second call is served from cache")
	assert.Equal(t, 1, sink.writes)
}

func TestFetchCommentsValidation(t *testing.T) {
	dl, _ := newTestDownloader(t)
	_, err := fetchComments(context.Background(), dl, nil, CommentsInput{})
	require.Error(t, err)

	_, err = fetchComments(context.Background(), dl, nil, CommentsInput{Video: "x", Sort: "oldest"})
	require.Error(t, err)
}

func TestRegisterTools(t *testing.T) {
	dl, _ := newTestDownloader(t)
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "dev"}, nil)
	assert.NotPanics(t, func() { RegisterTools(server, dl, nil) })
}
