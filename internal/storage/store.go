// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/billsplit/internal/models"
)

// Store is the export ledger: one row per download or copy attempt.
// Participant lists are never stored.
type Store interface {
	// RecordExport persists an export attempt.
	// The record's ID and CreatedAt are populated by the store when empty.
	RecordExport(ctx context.Context, rec *models.ExportRecord) error

	// ListExports returns the most recent records first. limit <= 0 means no limit.
	ListExports(ctx context.Context, limit int) ([]*models.ExportRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
