// Command ytcomments downloads the comments of a YouTube video and prints
// them as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytcomments/internal/archive"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

var errLimit = errors.New("limit reached")

type options struct {
	limit       int
	language    string
	sort        string
	compact     bool
	output      string
	retries     int
	retryDelay  time.Duration
	pageDelay   time.Duration
	timezone    string
	sqlitePath  string
	postgresURL string
	natsURL     string
	natsSubject string
	baseURL     string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	d := engine.Defaults()
	o := &options{}

	cmd := &cobra.Command{
		Use:   "ytcomments VIDEO",
		Short: "Download YouTube comments as JSON lines",
		Long: `Download the comments and replies of a YouTube video without an API key.

VIDEO is a video id or any watch, shorts or youtu.be URL. Each comment is
printed as one JSON object per line, top-level pages before the replies
they announced.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if o.output != "" && o.output != "-" {
				f, err := os.Create(o.output)
				if err != nil {
					return fmt.Errorf("open output: %w", err)
				}
				defer f.Close()
				out = f
			}
			return run(ctx, o, args[0], out)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&o.limit, "limit", "n", 0, "stop after this many comments (0 = all)")
	f.StringVarP(&o.language, "lang", "l", "", "interface language sent to YouTube, e.g. pt, en (default: page language)")
	f.StringVarP(&o.sort, "sort", "s", "recent", "sort order: recent or popular")
	f.BoolVar(&o.compact, "compact", false, "print cid, user, text, time, data, respostas only")
	f.StringVarP(&o.output, "output", "o", "-", "write to file instead of stdout")
	f.IntVar(&o.retries, "retries", d.RequestRetries, "attempts per continuation request")
	f.DurationVar(&o.retryDelay, "retry-delay", d.RetryDelay, "pause between attempts")
	f.DurationVar(&o.pageDelay, "page-delay", d.PageDelay, "pause between continuation requests")
	f.StringVar(&o.timezone, "timezone", d.Timezone, "zone for the compact date field")
	f.StringVar(&o.sqlitePath, "sqlite", "", "also archive to this SQLite file")
	f.StringVar(&o.postgresURL, "postgres", "", "also archive to this PostgreSQL database")
	f.StringVar(&o.natsURL, "nats-url", "", "also publish each comment to this NATS server")
	f.StringVar(&o.natsSubject, "nats-subject", d.NATSSubject, "NATS subject")
	f.StringVar(&o.baseURL, "base-url", "", "YouTube origin override")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging to stderr")
	_ = f.MarkHidden("base-url")

	return cmd
}

func run(ctx context.Context, o *options, video string, w io.Writer) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	sortBy, err := youtube.ParseSortOrder(o.sort)
	if err != nil {
		return err
	}

	dlOpts := []youtube.Option{
		youtube.WithRetry(engine.RetryConfig{MaxTries: o.retries, Delay: o.retryDelay}),
		youtube.WithPageDelay(o.pageDelay),
		youtube.WithRelativeTime(youtube.NewRelativeTime(o.timezone)),
	}
	if o.baseURL != "" {
		dlOpts = append(dlOpts, youtube.WithBaseURL(o.baseURL))
	}
	dl := youtube.New(dlOpts...)

	sinks := archive.Open(ctx, archive.Options{
		DatabaseURL: o.postgresURL,
		SQLitePath:  o.sqlitePath,
		NATSURL:     o.natsURL,
		NATSSubject: o.natsSubject,
	})
	defer sinks.Close()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var got []youtube.Comment
	n := 0
	err = dl.Stream(ctx, video, sortBy, o.language, func(c youtube.Comment) error {
		var v any = c
		if o.compact {
			v = dl.Public(c)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
		n++
		if len(sinks) > 0 {
			got = append(got, c)
		}
		if o.limit > 0 && n >= o.limit {
			return errLimit
		}
		return nil
	})
	if errors.Is(err, errLimit) {
		err = nil
	}

	if len(got) > 0 {
		if werr := sinks.Write(context.WithoutCancel(ctx), youtube.VideoID(video), got); werr != nil {
			slog.Warn("archive incomplete", slog.Any("error", werr))
		}
	}
	return err
}
