package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Database records pipeline runs and missing songs. It implements
// pipeline.Recorder.
type Database struct {
	db *sql.DB
}

// RunRecord is one pipeline execution, newest first from RecentRuns.
type RunRecord struct {
	ID           int64
	Kind         string // "create" or "dedupe"
	PlaylistID   string
	PlaylistName string
	Accepted     int
	Missing      int
	Removed      int
	RanAt        time.Time
}

// New opens (or creates) the run-history database. dbPath defaults to
// playlist_generator.db in the working directory.
func New(dbPath string) (*Database, error) {
	if dbPath == "" {
		dbPath = "playlist_generator.db"
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps reads cheap while a run is writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			playlist_id TEXT NOT NULL DEFAULT '',
			playlist_name TEXT NOT NULL DEFAULT '',
			accepted INTEGER NOT NULL DEFAULT 0,
			missing INTEGER NOT NULL DEFAULT 0,
			removed INTEGER NOT NULL DEFAULT 0,
			ran_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at DESC)`,
		`CREATE TABLE IF NOT EXISTS missing_songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id TEXT NOT NULL DEFAULT '',
			query TEXT NOT NULL,
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_missing_songs_playlist ON missing_songs(playlist_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// RecordCreateRun inserts a playlist-construction run.
func (d *Database) RecordCreateRun(playlistID, name string, accepted, missing int) error {
	_, err := d.db.Exec(
		`INSERT INTO runs (kind, playlist_id, playlist_name, accepted, missing, ran_at)
		 VALUES ('create', ?, ?, ?, ?, ?)`,
		playlistID, name, accepted, missing, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record create run: %w", err)
	}
	return nil
}

// RecordDedupeRun inserts a deduplication run.
func (d *Database) RecordDedupeRun(playlistID string, removed int) error {
	_, err := d.db.Exec(
		`INSERT INTO runs (kind, playlist_id, removed, ran_at)
		 VALUES ('dedupe', ?, ?, ?)`,
		playlistID, removed, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record dedupe run: %w", err)
	}
	return nil
}

// RecordMissing stores the unmatched queries of a run.
func (d *Database) RecordMissing(playlistID string, queries []string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to record missing songs: %w", err)
	}
	defer tx.Rollback()

	for _, query := range queries {
		if _, err := tx.Exec(
			`INSERT INTO missing_songs (playlist_id, query) VALUES (?, ?)`,
			playlistID, query,
		); err != nil {
			return fmt.Errorf("failed to record missing song %q: %w", query, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the most recent pipeline runs.
func (d *Database) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.Query(
		`SELECT id, kind, playlist_id, playlist_name, accepted, missing, removed, ran_at
		 FROM runs
		 ORDER BY ran_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var ranAtStr string
		if err := rows.Scan(&r.ID, &r.Kind, &r.PlaylistID, &r.PlaylistName,
			&r.Accepted, &r.Missing, &r.Removed, &ranAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		ranAt, err := time.Parse(time.RFC3339Nano, ranAtStr)
		if err != nil {
			// Rows written by sqlite's CURRENT_TIMESTAMP default
			ranAt, err = time.Parse("2006-01-02 15:04:05", ranAtStr)
			if err != nil {
				log.Warnf("failed to parse ran_at timestamp '%s'", ranAtStr)
				ranAt = time.Now()
			}
		}
		r.RanAt = ranAt

		records = append(records, r)
	}
	return records, rows.Err()
}

// MissingSongs returns the unmatched queries recorded for a playlist.
func (d *Database) MissingSongs(playlistID string) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT query FROM missing_songs WHERE playlist_id = ? ORDER BY id`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing songs: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return nil, fmt.Errorf("failed to scan missing song row: %w", err)
		}
		queries = append(queries, query)
	}
	return queries, rows.Err()
}
