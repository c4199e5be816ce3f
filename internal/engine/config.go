package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Language             string        // default INNERTUBE_CONTEXT.client.hl override
	Timezone             string        // zone used to format converted dates
	RequestRetries       int           // tries per continuation call
	RetryDelay           time.Duration // pause between tries
	PageDelay            time.Duration // politeness gap between continuation calls
	DefaultLimit         int
	FetchTimeout         time.Duration
	HTTPClient           *http.Client // nil = youtube transport builds its own
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	DatabaseURL          string // postgres archive, empty = disabled
	SQLitePath           string // sqlite archive, empty = disabled
	NATSURL              string // nats publisher, empty = disabled
	NATSSubject          string
}

// Defaults mirrors the values the downloader was tuned with.
func Defaults() Config {
	return Config{
		Language:             "pt",
		Timezone:             "America/Sao_Paulo",
		RequestRetries:       5,
		RetryDelay:           20 * time.Second,
		PageDelay:            500 * time.Millisecond,
		DefaultLimit:         50,
		FetchTimeout:         30 * time.Second,
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
		NATSSubject:          "youtube.comments",
	}
}

var cfg = Defaults()

// Cfg exposes the engine configuration for sub-packages (youtube, archive).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
