package youtube

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRuntimeConfig(t *testing.T) {
	cfg, err := extractRuntimeConfig([]byte(watchPage(disabledData)))
	require.NoError(t, err)
	assert.Equal(t, testAPIKey, cfg.APIKey())
	assert.Equal(t, "en", cfg.Language())

	cfg.SetLanguage("pt")
	assert.Equal(t, "pt", cfg.Language())
}

func TestExtractInitialDataTerminators(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"script close", `<script>var ytInitialData = {"a":1};</script>`},
		{"var meta", `<script>window["ytInitialData"] = {"a":1}; var meta = document.createElement('meta');</script>`},
		{"newline", "window['ytInitialData']={\"a\":1};\nvar x = 1;"},
		{"brace in string", `<script>var ytInitialData = {"a":1,"s":"}{\"}"};</script>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := extractInitialData([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, "1", v.Path("a").Str())
		})
	}
}

func TestExtractSkipsNonObjectCalls(t *testing.T) {
	doc := `ytcfg.set("LOGGED_IN", false); ytcfg.set({"INNERTUBE_API_KEY":"k"}) ; `
	cfg, err := extractRuntimeConfig([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey())
}

func TestExtractMissing(t *testing.T) {
	for _, doc := range []string{
		``,
		`<html>no data</html>`,
		`var ytInitialData = {"a":1}`, // no terminator
		`var ytInitialData = {"a":1;</script>`,
	} {
		_, err := extractInitialData([]byte(doc))
		assert.ErrorIs(t, err, ErrExtraction, "doc %q", doc)
	}
}

func TestBalancedObject(t *testing.T) {
	assert.Equal(t, `{"a":{"b":"}"}}`, string(balancedObject([]byte(`{"a":{"b":"}"}}; rest`))))
	assert.Equal(t, `{'x':'\'}'}`, string(balancedObject([]byte(`{'x':'\'}'}tail`))))
	assert.Nil(t, balancedObject([]byte(`"str"`)))
	assert.Nil(t, balancedObject([]byte(`{"open":`)))
}

func TestHiddenInputs(t *testing.T) {
	doc := `<form action="https://consent.youtube.com/save" method="POST">
<input type="hidden" name="gl" value="BR">
<input type="hidden" name="m" value="0"/>
<INPUT TYPE="HIDDEN" NAME="bl" VALUE="boq_identityfrontenduiserver_20240101.08_p0">
<input type="text" name="visible" value="no">
<input type="hidden" value="nameless">
<button>Accept all</button></form>`

	got := hiddenInputs([]byte(doc))
	assert.Equal(t, "BR", got.Get("gl"))
	assert.Equal(t, "0", got.Get("m"))
	assert.Equal(t, "boq_identityfrontenduiserver_20240101.08_p0", got.Get("bl"))
	assert.False(t, got.Has("visible"))
	assert.Len(t, got, 3)

	params := consentParams([]byte(doc), "https://www.youtube.com/watch?v=x")
	assert.Equal(t, "https://www.youtube.com/watch?v=x", params.Get("continue"))
	assert.Equal(t, "false", params.Get("set_eom"))
	assert.Equal(t, "true", params.Get("set_ytc"))
	assert.Equal(t, "true", params.Get("set_apyt"))
}

func TestBootstrapConsentHandshake(t *testing.T) {
	var saved atomic.Int32
	page := watchPage(disabledData)
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("SOCS"); err != nil {
			http.Redirect(w, r, "/consent/ml?continue="+r.URL.String(), http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/consent/ml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<form><input type="hidden" name="gl" value="BR"><input type="hidden" name="pc" value="yt"></form>`))
	})
	mux.HandleFunc("/save", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Method != http.MethodPost || q.Get("gl") != "BR" || q.Get("set_ytc") != "true" || !strings.Contains(q.Get("continue"), "/watch?v=") {
			http.Error(w, "bad consent", http.StatusBadRequest)
			return
		}
		saved.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "SOCS", Value: "CAI", Path: "/"})
		http.Redirect(w, r, q.Get("continue"), http.StatusSeeOther)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	d := testDownloader(srv, WithHTTPClient(&http.Client{Jar: jar}))

	sess, err := d.Bootstrap(context.Background(), testVideoID, "es")
	require.NoError(t, err)
	assert.EqualValues(t, 1, saved.Load())
	assert.Equal(t, testAPIKey, sess.Config.APIKey())
	assert.Equal(t, "es", sess.Config.Language())
	assert.Equal(t, srv.URL+"/watch?v="+testVideoID, sess.URL)
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL("abc"))
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL(" https://youtu.be/abc "))
	assert.Equal(t, "https://www.youtube.com/@channel", WatchURL("https://www.youtube.com/@channel"))
	assert.True(t, IsURL("https://m.youtube.com/watch?v=abc"))
	assert.False(t, IsURL("abc"))
}

func TestVideoID(t *testing.T) {
	tests := map[string]string{
		"wctcZbWvpoY": "wctcZbWvpoY",
		"https://www.youtube.com/watch?v=wctcZbWvpoY&t=10s": "wctcZbWvpoY",
		"youtube.com/watch?v=abc":                           "abc",
		"https://youtu.be/abc?si=x":                         "abc",
		"https://www.youtube.com/shorts/xyz":                "xyz",
		"https://www.youtube.com/@channel":                  "https://www.youtube.com/@channel",
	}
	for in, want := range tests {
		assert.Equal(t, want, VideoID(in), in)
	}
}
