package models

// ExportKind is the consumer that requested a rendered summary.
type ExportKind string

const (
	// ExportDownload saves the image as a file.
	ExportDownload ExportKind = "download"
	// ExportCopy places the image on the clipboard.
	ExportCopy ExportKind = "copy"
)

// ExportStatus is the outcome of an export attempt.
type ExportStatus string

const (
	ExportOK     ExportStatus = "ok"
	ExportFailed ExportStatus = "failed"
)

// ExportRecord is one entry of the export ledger.
// It records what was exported, never the participant list itself.
type ExportRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	Kind     ExportKind
	Filename string

	ParticipantCount   int
	TotalOriginal      int64
	TotalAfterDiscount int64

	// Bytes is the size of the PNG payload, 0 on failure.
	Bytes int64

	Status ExportStatus

	// Error is the failure message when Status is ExportFailed.
	Error string

	// CreatedAt is the Unix timestamp (milliseconds) of the attempt.
	CreatedAt int64
}
