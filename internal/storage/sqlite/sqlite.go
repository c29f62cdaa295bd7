// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordExport inserts an export record.
func (s *SQLiteStore) RecordExport(ctx context.Context, rec *models.ExportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}

	var errMsg interface{}
	if rec.Error != "" {
		errMsg = rec.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (id, kind, filename, participant_count, total_original, total_after_discount, bytes, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Filename, rec.ParticipantCount, rec.TotalOriginal,
		rec.TotalAfterDiscount, rec.Bytes, string(rec.Status), errMsg, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	return nil
}

// ListExports returns records newest first.
func (s *SQLiteStore) ListExports(ctx context.Context, limit int) ([]*models.ExportRecord, error) {
	query := `SELECT id, kind, filename, participant_count, total_original, total_after_discount, bytes, status, error, created_at
		 FROM exports ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var records []*models.ExportRecord
	for rows.Next() {
		rec := &models.ExportRecord{}
		var kind, status string
		var errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &kind, &rec.Filename, &rec.ParticipantCount, &rec.TotalOriginal,
			&rec.TotalAfterDiscount, &rec.Bytes, &status, &errMsg, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		rec.Kind = models.ExportKind(kind)
		rec.Status = models.ExportStatus(status)
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exports: %w", err)
	}

	return records, nil
}
