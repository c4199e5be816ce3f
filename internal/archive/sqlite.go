package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

// SQLite archives comments in a local file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS comments (
		video_id    TEXT NOT NULL,
		cid         TEXT NOT NULL,
		parent_cid  TEXT NOT NULL,
		text        TEXT NOT NULL,
		published   TEXT NOT NULL DEFAULT '',
		time_parsed TEXT,
		author      TEXT NOT NULL DEFAULT '',
		channel     TEXT NOT NULL DEFAULT '',
		votes       TEXT NOT NULL DEFAULT '0',
		replies     TEXT NOT NULL DEFAULT '',
		photo       TEXT NOT NULL DEFAULT '',
		heart       INTEGER NOT NULL DEFAULT 0,
		is_reply    INTEGER NOT NULL DEFAULT 0,
		paid        TEXT NOT NULL DEFAULT '',
		seq         INTEGER NOT NULL,
		fetched_at  TEXT NOT NULL,
		PRIMARY KEY (video_id, cid)
	)`)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

// Write upserts comments, keeping the first-seen order in seq.
func (s *SQLite) Write(ctx context.Context, video string, comments []youtube.Comment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var base int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM comments WHERE video_id = ?`, video).Scan(&base); err != nil {
		return fmt.Errorf("sqlite: next seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comments (video_id, cid, parent_cid, text, published, time_parsed, author, channel,
		                       votes, replies, photo, heart, is_reply, paid, seq, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (video_id, cid) DO UPDATE SET
		     text = excluded.text, published = excluded.published, time_parsed = excluded.time_parsed,
		     votes = excluded.votes, replies = excluded.replies, heart = excluded.heart,
		     paid = excluded.paid, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range comments {
		var parsed sql.NullString
		if c.TimeParsed != nil {
			parsed = sql.NullString{String: c.TimeParsed.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			video, c.CID, c.ParentID(), c.Text, c.Time, parsed, c.Author, c.Channel,
			c.Votes, c.Replies, c.Photo, c.Heart, c.Reply, c.Paid, base+int64(i)+1, now,
		); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", c.CID, err)
		}
	}
	return tx.Commit()
}

// List returns the archived comments of video in the order they were first
// written.
func (s *SQLite) List(ctx context.Context, video string) ([]youtube.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cid, text, published, time_parsed, author, channel, votes, replies, photo, heart, is_reply, paid
		 FROM comments WHERE video_id = ? ORDER BY seq`, video)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var out []youtube.Comment
	for rows.Next() {
		var c youtube.Comment
		var parsed sql.NullString
		if err := rows.Scan(&c.CID, &c.Text, &c.Time, &parsed, &c.Author, &c.Channel,
			&c.Votes, &c.Replies, &c.Photo, &c.Heart, &c.Reply, &c.Paid); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		if parsed.Valid {
			if t, err := time.Parse(time.RFC3339, parsed.String); err == nil {
				c.TimeParsed = &t
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
