// Package export delivers rendered summaries to the user: as a downloaded
// file or as a clipboard image. Each attempt is reported to the user through
// a Notifier and recorded in the export ledger.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/numfmt"
	"github.com/mmynk/billsplit/internal/render"
	"github.com/mmynk/billsplit/internal/session"
)

// MIMEType of every artifact.
const MIMEType = "image/png"

const (
	msgDownloaded     = "Đã tải xuống %s"
	msgDownloadFailed = "Lỗi khi tải xuống. Vui lòng thử lại!"
	msgCopied         = "Đã copy ảnh vào clipboard!"
	msgCopyFailed     = "Lỗi khi copy. Vui lòng thử lại!"
)

var (
	ErrBusy       = errors.New("an export is already in progress")
	ErrEmptyImage = errors.New("rendered image is empty")
)

// Renderer draws a summary image.
type Renderer interface {
	Render(ctx context.Context, in render.Input) render.Image
}

// Ledger stores export attempts.
type Ledger interface {
	RecordExport(ctx context.Context, rec *models.ExportRecord) error
}

// Exporter runs one export at a time.
type Exporter struct {
	renderer Renderer
	ledger   Ledger
	notifier Notifier
	now      func() time.Time

	busy atomic.Bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLedger records every attempt in l.
func WithLedger(l Ledger) Option {
	return func(e *Exporter) { e.ledger = l }
}

// WithNotifier sends user notices to n instead of the logger.
func WithNotifier(n Notifier) Option {
	return func(e *Exporter) { e.notifier = n }
}

// WithClock overrides the clock used for filenames and records.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New creates an Exporter.
func New(r Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: r,
		notifier: SlogNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filename is the download name for an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("chia-chi-phi-%d.png", t.UnixMilli())
}

// InputFromSnapshot builds renderer input from a session snapshot.
func InputFromSnapshot(snap session.Snapshot) render.Input {
	return render.Input{
		Participants: snap.Participants,
		Allocation:   snap.Allocation,
		QR:           render.ParseSource(snap.QR),
	}
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Download renders the summary and saves it through target.
func (e *Exporter) Download(ctx context.Context, in render.Input, target Target) (*Artifact, error) {
	return e.export(ctx, models.ExportDownload, in, target)
}

// Copy renders the summary and places it on the clipboard behind target.
func (e *Exporter) Copy(ctx context.Context, in render.Input, target Target) (*Artifact, error) {
	return e.export(ctx, models.ExportCopy, in, target)
}

// Export dispatches on kind.
func (e *Exporter) Export(ctx context.Context, kind models.ExportKind, in render.Input, target Target) (*Artifact, error) {
	switch kind {
	case models.ExportDownload, models.ExportCopy:
		return e.export(ctx, kind, in, target)
	default:
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
}

func (e *Exporter) export(ctx context.Context, kind models.ExportKind, in render.Input, target Target) (a *Artifact, err error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	stamp := e.now()
	begin := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			a, err = nil, fmt.Errorf("export panicked: %v", rec)
		}
		metrics.ExportDuration.WithLabelValues(string(kind)).Observe(time.Since(begin).Seconds())
		e.finish(ctx, kind, in, stamp, a, err)
	}()

	img := e.renderer.Render(ctx, in)
	if len(img.PNG) == 0 {
		return nil, ErrEmptyImage
	}

	a = &Artifact{
		Filename: Filename(stamp),
		MIMEType: MIMEType,
		Data:     img.PNG,
	}
	if err := target.Deliver(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to deliver %s: %w", kind, err)
	}
	return a, nil
}

// finish notifies the user, updates metrics and writes the ledger entry.
func (e *Exporter) finish(ctx context.Context, kind models.ExportKind, in render.Input, stamp time.Time, a *Artifact, err error) {
	rec := &models.ExportRecord{
		Kind:               kind,
		Filename:           Filename(stamp),
		ParticipantCount:   len(in.Participants),
		TotalOriginal:      in.Allocation.TotalOriginal,
		TotalAfterDiscount: numfmt.Round(in.Allocation.TotalAfterDiscount),
		Status:             models.ExportOK,
		CreatedAt:          stamp.UnixMilli(),
	}

	if err != nil {
		rec.Status = models.ExportFailed
		rec.Error = err.Error()
		slog.Error("Export error", "kind", kind, "error", err)
		e.notifier.Notify(ctx, failureNotice(kind))
	} else {
		rec.Bytes = int64(len(a.Data))
		slog.Info("Export completed",
			"kind", kind,
			"filename", a.Filename,
			"size", humanize.Bytes(uint64(len(a.Data))),
		)
		e.notifier.Notify(ctx, successNotice(kind, a))
	}
	metrics.Exports.WithLabelValues(string(kind), string(rec.Status)).Inc()

	if e.ledger == nil {
		return
	}
	if lerr := e.ledger.RecordExport(ctx, rec); lerr != nil {
		slog.Warn("Failed to record export", "kind", kind, "error", lerr)
	}
}

func successNotice(kind models.ExportKind, a *Artifact) Notice {
	if kind == models.ExportCopy {
		return Notice{Level: LevelInfo, Message: msgCopied}
	}
	return Notice{Level: LevelInfo, Message: fmt.Sprintf(msgDownloaded, a.Filename)}
}

func failureNotice(kind models.ExportKind) Notice {
	if kind == models.ExportCopy {
		return Notice{Level: LevelError, Message: msgCopyFailed}
	}
	return Notice{Level: LevelError, Message: msgDownloadFailed}
}
