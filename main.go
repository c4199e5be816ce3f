// go_ytcomments: YouTube comment downloader MCP server.
//
// Exposes the youtube_comments tool. Runs as HTTP MCP server or stdio
// transport. Downloaded threads can be archived to PostgreSQL, SQLite
// and NATS when configured.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/archive"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
	"github.com/anatolykoptev/go_ytcomments/internal/ytserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_ytcomments",
		slog.String("port", mcpPort),
		slog.String("language", engine.Cfg.Language),
	)

	sinks := archive.Open(context.Background(), archive.OptionsFromCfg())
	defer sinks.Close()
	slog.Info("archive sinks ready", slog.Int("count", len(sinks)))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytcomments",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, youtube.NewFromConfig(), sinks)
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytcomments",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	engine.Init(configFromEnv())

	cacheTTL := env.Duration("CACHE_TTL", 30*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, engine.Cfg.CacheMaxEntries, engine.Cfg.CacheCleanupInterval)
}

func configFromEnv() engine.Config {
	d := engine.Defaults()
	c := engine.Config{
		Language:             env.Str("YT_LANGUAGE", d.Language),
		Timezone:             env.Str("YT_TIMEZONE", d.Timezone),
		RequestRetries:       env.Int("YT_REQUEST_RETRIES", d.RequestRetries),
		RetryDelay:           env.Duration("YT_RETRY_DELAY", d.RetryDelay),
		PageDelay:            env.Duration("YT_PAGE_DELAY", d.PageDelay),
		DefaultLimit:         env.Int("YT_DEFAULT_LIMIT", d.DefaultLimit),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		SQLitePath:           env.Str("SQLITE_PATH", ""),
		NATSURL:              env.Str("NATS_URL", ""),
		NATSSubject:          env.Str("NATS_SUBJECT", d.NATSSubject),
	}
	jar, _ := cookiejar.New(nil)
	c.HTTPClient = &http.Client{
		Timeout: c.FetchTimeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	return c
}
