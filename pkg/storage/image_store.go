// Package storage keeps an archive of downloaded memory images in SQLite.
// Every successful download is snapshotted before anything touches the
// image, so an accidental overwrite of a radio can be undone.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one archived memory image.
type Snapshot struct {
	ID        int64
	Model     string
	Note      string
	Size      int
	Checksum  byte
	CreatedAt time.Time
	Data      []byte
}

// ImageStore handles persistent storage of memory image snapshots
type ImageStore struct {
	db           *sql.DB
	dbPath       string
	maxSnapshots int
}

// NewImageStore creates a new image store with SQLite backend
func NewImageStore(dbPath string, maxSnapshots int) (*ImageStore, error) {
	store := &ImageStore{
		dbPath:       dbPath,
		maxSnapshots: maxSnapshots,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	return store, nil
}

// initialize sets up the database connection and creates tables
func (is *ImageStore) initialize() error {
	if is.dbPath == "" {
		is.dbPath = "./yaesutool.db"
	}

	if err := os.MkdirAll(filepath.Dir(is.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := is.dbPath + "?_busy_timeout=10000&_journal_mode=WAL"

	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	is.db = db

	if err := is.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := is.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createTables creates the database schema
func (is *ImageStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL,
		checksum INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := is.db.Exec(schema)
	return err
}

// createIndexes creates database indexes for performance
func (is *ImageStore) createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_model ON snapshots(model)",
	}

	for _, indexSQL := range indexes {
		if _, err := is.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SaveSnapshot archives one memory image. Snapshots beyond the configured
// maximum are pruned oldest-first in the same transaction.
func (is *ImageStore) SaveSnapshot(model, note string, checksum byte, data []byte) (int64, error) {
	tx, err := is.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO snapshots (model, note, size, checksum, data)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query, model, note, len(data), checksum, data)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot ID: %w", err)
	}

	if err := is.pruneOldSnapshots(tx); err != nil {
		return 0, fmt.Errorf("failed to prune old snapshots: %w", err)
	}

	return id, tx.Commit()
}

// ListSnapshots returns snapshot metadata, newest first, without the image
// blobs.
func (is *ImageStore) ListSnapshots() ([]Snapshot, error) {
	query := `
		SELECT id, model, note, size, checksum, created_at
		FROM snapshots
		ORDER BY created_at DESC, id DESC
	`

	rows, err := is.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var checksum int
		if err := rows.Scan(&s.ID, &s.Model, &s.Note, &s.Size, &checksum, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Checksum = byte(checksum)
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// GetSnapshot returns one snapshot with its image blob.
func (is *ImageStore) GetSnapshot(id int64) (*Snapshot, error) {
	query := `
		SELECT id, model, note, size, checksum, data, created_at
		FROM snapshots
		WHERE id = ?
	`

	var s Snapshot
	var checksum int
	err := is.db.QueryRow(query, id).Scan(
		&s.ID, &s.Model, &s.Note, &s.Size, &checksum, &s.Data, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	s.Checksum = byte(checksum)

	return &s, nil
}

// pruneOldSnapshots removes snapshots beyond the maximum limit
func (is *ImageStore) pruneOldSnapshots(tx *sql.Tx) error {
	if is.maxSnapshots <= 0 {
		return nil // No limit
	}

	var count int
	err := tx.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count)
	if err != nil {
		return err
	}

	if count <= is.maxSnapshots {
		return nil // Within limit
	}

	deleteCount := count - is.maxSnapshots
	query := `
		DELETE FROM snapshots
		WHERE id IN (
			SELECT id FROM snapshots
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		)
	`

	_, err = tx.Exec(query, deleteCount)
	return err
}

// Close closes the database connection
func (is *ImageStore) Close() error {
	if is.db != nil {
		return is.db.Close()
	}
	return nil
}
