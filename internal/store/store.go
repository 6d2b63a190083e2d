// Package store persists wish history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/xtding233/gacha-wish/internal/item"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store records every item handed out by a session.
type Store struct {
	db *sql.DB
}

// Pull is one row of wish history.
type Pull struct {
	SessionID string    `json:"session_id"`
	Banner    string    `json:"banner"`
	Seq       int       `json:"seq"` // 1-based attempt number within the session
	Item      item.Item `json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

// Open initializes the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS pulls (
			session_id TEXT NOT NULL,
			banner TEXT NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			rating INTEGER NOT NULL,
			category TEXT NOT NULL,
			featured BOOLEAN NOT NULL DEFAULT 0,
			image TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pulls_banner ON pulls(banner, rating);`,
	}
	for _, s := range schemas {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// RecordPulls appends items in draw order, numbering them from firstSeq.
func (s *Store) RecordPulls(ctx context.Context, sessionID, banner string, firstSeq int, items []item.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pulls
		(session_id, banner, seq, name, rating, category, featured, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, sessionID, banner, firstSeq+i, it.Name, int(it.Rating),
			string(it.Category), it.Featured, it.Image, now); err != nil {
			return fmt.Errorf("insert pull %d: %w", firstSeq+i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// History returns the latest pulls of a session, newest first. limit <= 0
// returns everything.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]Pull, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, banner, seq, name, rating, category, featured, image, created_at
		FROM pulls WHERE session_id = ? ORDER BY seq DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Pull
	for rows.Next() {
		var (
			p        Pull
			rating   int
			category string
		)
		if err := rows.Scan(&p.SessionID, &p.Banner, &p.Seq, &p.Item.Name, &rating, &category,
			&p.Item.Featured, &p.Item.Image, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.Item.Rating = item.Rating(rating)
		p.Item.Category = item.Category(category)
		out = append(out, p)
	}
	return out, rows.Err()
}

// RatingCounts tallies a session's pulls by rating.
func (s *Store) RatingCounts(ctx context.Context, sessionID string) (map[item.Rating]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM pulls WHERE session_id = ? GROUP BY rating`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	out := make(map[item.Rating]int, len(item.Ratings))
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		out[item.Rating(rating)] = n
	}
	return out, rows.Err()
}
