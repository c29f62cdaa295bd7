package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/billsplit/internal/models"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "billsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "exports.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("RecordExport generates ID and timestamp", func(t *testing.T) {
		rec := &models.ExportRecord{
			Kind:               models.ExportDownload,
			Filename:           "chia-chi-phi-1.png",
			ParticipantCount:   2,
			TotalOriginal:      300000,
			TotalAfterDiscount: 270000,
			Bytes:              1234,
			Status:             models.ExportOK,
		}
		if err := store.RecordExport(ctx, rec); err != nil {
			t.Fatalf("RecordExport failed: %v", err)
		}
		if rec.ID == "" {
			t.Error("Expected record ID to be generated")
		}
		if rec.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("ListExports returns newest first", func(t *testing.T) {
		failed := &models.ExportRecord{
			Kind:      models.ExportCopy,
			Filename:  "chia-chi-phi-2.png",
			Status:    models.ExportFailed,
			Error:     "clipboard denied",
			CreatedAt: 9999999999999,
		}
		if err := store.RecordExport(ctx, failed); err != nil {
			t.Fatalf("RecordExport failed: %v", err)
		}

		records, err := store.ListExports(ctx, 0)
		if err != nil {
			t.Fatalf("ListExports failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}

		got := records[0]
		if got.ID != failed.ID {
			t.Errorf("Expected newest record first, got %s", got.Filename)
		}
		if got.Kind != models.ExportCopy || got.Status != models.ExportFailed {
			t.Errorf("Kind/status mismatch: got %s/%s", got.Kind, got.Status)
		}
		if got.Error != "clipboard denied" {
			t.Errorf("Error mismatch: got %q", got.Error)
		}

		older := records[1]
		if older.TotalOriginal != 300000 || older.TotalAfterDiscount != 270000 {
			t.Errorf("Totals mismatch: got %d/%d", older.TotalOriginal, older.TotalAfterDiscount)
		}
		if older.ParticipantCount != 2 || older.Bytes != 1234 {
			t.Errorf("Count/bytes mismatch: got %d/%d", older.ParticipantCount, older.Bytes)
		}
		if older.Error != "" {
			t.Errorf("Expected empty error, got %q", older.Error)
		}
	})

	t.Run("ListExports honors limit", func(t *testing.T) {
		records, err := store.ListExports(ctx, 1)
		if err != nil {
			t.Fatalf("ListExports failed: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Expected 1 record, got %d", len(records))
		}
	})
}
