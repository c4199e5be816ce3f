package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

const (
	testAPIKey  = "test-key"
	testVideoID = "wctcZbWvpoY"
	nextAPI     = "/youtubei/v1/next"
)

func endpoint(token string) string {
	return fmt.Sprintf(`{"clickTrackingParams":"x","commandMetadata":{"webCommandMetadata":{"sendPost":true,"apiUrl":%q}},"continuationCommand":{"token":%q,"request":"CONTINUATION_REQUEST_TYPE_WATCH_NEXT"}}`, nextAPI, token)
}

func entity(cid, text, author, published string) string {
	return fmt.Sprintf(`{"key":"E-%[1]s","properties":{"commentId":%[1]q,"content":{"content":%[2]q},"publishedTime":%[4]q,"toolbarStateKey":"TB-%[1]s"},"author":{"channelId":"UC-%[3]s","displayName":"@%[3]s","avatarThumbnailUrl":"https://yt3.example/%[3]s.jpg"},"toolbar":{"likeCountNotliked":" 12 ","replyCount":"1"}}`, cid, text, author, published)
}

func mutations(payloads ...string) string {
	parts := make([]string, len(payloads))
	for i, p := range payloads {
		parts[i] = `{"payload":` + p + `}`
	}
	return `"frameworkUpdates":{"entityBatchUpdate":{"mutations":[` + strings.Join(parts, ",") + `]}}`
}

func commentPayload(cid, text, author string) string {
	return `{"commentEntityPayload":` + entity(cid, text, author, "há 2 dias") + `}`
}

// initialData builds ytInitialData with an open comment section and a sort
// menu with one entry per token.
func initialData(sortTokens ...string) string {
	items := make([]string, len(sortTokens))
	for i, tok := range sortTokens {
		items[i] = fmt.Sprintf(`{"title":"opt%d","serviceEndpoint":%s}`, i, endpoint(tok))
	}
	return `{"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[` +
		`{"videoPrimaryInfoRenderer":{"title":{"runs":[{"text":"video"}]}}},` +
		`{"itemSectionRenderer":{"sectionIdentifier":"comment-item-section","contents":[{"continuationItemRenderer":{"trigger":"CONTINUATION_TRIGGER_ON_ITEM_SHOWN","continuationEndpoint":` + endpoint("HEADER") + `}}]}}` +
		`]}}}},"engagementPanels":[{"engagementPanelSectionListRenderer":{"header":{"engagementPanelTitleHeaderRenderer":{"menu":{"sortFilterSubMenuRenderer":{"subMenuItems":[` +
		strings.Join(items, ",") + `]}}}}}}]}`
}

const disabledData = `{"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[` +
	`{"itemSectionRenderer":{"contents":[{"messageRenderer":{"text":{"runs":[{"text":"Comments are turned off."}]}}}]}}]}}}}}`

func watchPage(data string) string {
	return `<!DOCTYPE html><html><head><script nonce="n">var ytcfg={d:function(){}};ytcfg.set("EXPERIMENT_FLAGS", 1);` +
		`ytcfg.set({"INNERTUBE_API_KEY":"` + testAPIKey + `","INNERTUBE_CONTEXT":{"client":{"hl":"en","gl":"US","clientName":"WEB","clientVersion":"2.20240101"}},"XSRF":"a}b"}); window.ytcfg.obfuscatedData_ = [];</script>` +
		`</head><body><script nonce="n">var ytInitialData = ` + data + `;</script></body></html>`
}

// fakeYouTube serves a watch page and answers continuation calls by token.
type fakeYouTube struct {
	t         *testing.T
	page      string
	responses map[string]string
	statuses  map[string]int

	mu       sync.Mutex
	tokens   []string
	contexts []map[string]any
}

func newFakeYouTube(t *testing.T, page string) *fakeYouTube {
	return &fakeYouTube{t: t, page: page, responses: map[string]string{}, statuses: map[string]int{}}
}

func (f *fakeYouTube) start() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(f.page))
	})
	mux.HandleFunc(nextAPI, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("key") != testAPIKey {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var body struct {
			Context      map[string]any `json:"context"`
			Continuation string         `json:"continuation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.tokens = append(f.tokens, body.Continuation)
		f.contexts = append(f.contexts, body.Context)
		f.mu.Unlock()

		if code, ok := f.statuses[body.Continuation]; ok {
			w.WriteHeader(code)
			return
		}
		resp, ok := f.responses[body.Continuation]
		if !ok {
			resp = `{"responseContext":{}}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	})
	srv := httptest.NewServer(mux)
	f.t.Cleanup(srv.Close)
	return srv
}

func (f *fakeYouTube) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func testDownloader(srv *httptest.Server, opts ...Option) *Downloader {
	base := []Option{
		WithHTTPClient(srv.Client()),
		WithBaseURL(srv.URL),
		WithConsentURL(srv.URL + "/save"),
		WithRetry(engine.RetryConfig{MaxTries: 2, Delay: time.Millisecond}),
		WithPageDelay(0),
		WithUserAgent("Mozilla/5.0 test"),
	}
	return New(append(base, opts...)...)
}
