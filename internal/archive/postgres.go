package archive

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const upsertComment = `
INSERT INTO youtube_comments
    (video_id, cid, parent_cid, text, published, time_parsed, author, channel,
     votes, replies, photo, heart, is_reply, paid, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
ON CONFLICT (video_id, cid) DO UPDATE SET
    text = EXCLUDED.text,
    published = EXCLUDED.published,
    time_parsed = EXCLUDED.time_parsed,
    votes = EXCLUDED.votes,
    replies = EXCLUDED.replies,
    heart = EXCLUDED.heart,
    paid = EXCLUDED.paid,
    fetched_at = now()`

// Postgres archives comments in the youtube_comments table.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("archive postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

func (db *Postgres) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Write upserts comments in one transaction.
func (db *Postgres) Write(ctx context.Context, video string, comments []youtube.Comment) error {
	batch := &pgx.Batch{}
	for _, c := range comments {
		batch.Queue(upsertComment,
			video, c.CID, c.ParentID(), c.Text, c.Time, c.TimeParsed, c.Author, c.Channel,
			c.Votes, c.Replies, c.Photo, c.Heart, c.Reply, c.Paid)
	}

	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("postgres: upsert %d comments: %w", len(comments), err)
	}
	return nil
}

// Count returns how many comments of video are archived.
func (db *Postgres) Count(ctx context.Context, video string) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx, `SELECT count(*) FROM youtube_comments WHERE video_id = $1`, video).Scan(&n)
	return n, err
}
