package engine

import (
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// RandomUserAgent returns a current desktop Chrome User-Agent.
func RandomUserAgent() string { return stealth.RandomUserAgent() }

// BrowserHeaders returns Chrome navigation headers for a plain net/http
// request, with User-Agent pinned to ua. Accept-Encoding is left out so the
// transport negotiates gzip itself and decompresses transparently.
func BrowserHeaders(ua string) http.Header {
	h := make(http.Header)
	for k, v := range stealth.ChromeHeaders() {
		switch strings.ToLower(k) {
		case "accept-encoding", "user-agent":
			continue
		}
		h.Set(k, v)
	}
	if ua == "" {
		ua = RandomUserAgent()
	}
	h.Set("User-Agent", ua)
	return h
}
