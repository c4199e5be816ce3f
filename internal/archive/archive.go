// Package archive persists downloaded comments. Each backend is optional and
// selected by configuration; Multi fans a write out to all of them.
package archive

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

// Sink stores the comments of one video. Writes are idempotent per
// (video, cid).
type Sink interface {
	Write(ctx context.Context, video string, comments []youtube.Comment) error
	Close() error
}

// Multi writes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Write(ctx context.Context, video string, comments []youtube.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, video, comments); err != nil {
			engine.IncrArchiveErrors()
			slog.Warn("archive: write failed", slog.String("video", video), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		engine.IncrArchiveWrites()
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Options selects the sinks Open connects. Empty fields disable a backend.
type Options struct {
	DatabaseURL string
	SQLitePath  string
	NATSURL     string
	NATSSubject string
}

// OptionsFromCfg reads sink settings from engine.Cfg.
func OptionsFromCfg() Options {
	return Options{
		DatabaseURL: engine.Cfg.DatabaseURL,
		SQLitePath:  engine.Cfg.SQLitePath,
		NATSURL:     engine.Cfg.NATSURL,
		NATSSubject: engine.Cfg.NATSSubject,
	}
}

// Open connects every configured sink. A backend that fails to connect is
// logged and skipped so one outage does not disable the others.
func Open(ctx context.Context, o Options) Multi {
	var m Multi
	if o.DatabaseURL != "" {
		if pg, err := ConnectPostgres(ctx, o.DatabaseURL); err != nil {
			slog.Warn("archive: postgres disabled", slog.Any("error", err))
		} else {
			m = append(m, pg)
		}
	}
	if o.SQLitePath != "" {
		if lite, err := OpenSQLite(o.SQLitePath); err != nil {
			slog.Warn("archive: sqlite disabled", slog.Any("error", err))
		} else {
			m = append(m, lite)
		}
	}
	if o.NATSURL != "" {
		if pub, err := ConnectNATS(o.NATSURL, o.NATSSubject); err != nil {
			slog.Warn("archive: nats disabled", slog.Any("error", err))
		} else {
			m = append(m, pub)
		}
	}
	return m
}
