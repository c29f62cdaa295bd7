package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/render"
	"github.com/mmynk/billsplit/internal/session"
)

type fakeRenderer struct {
	png     []byte
	panics  bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeRenderer) Render(ctx context.Context, in render.Input) render.Image {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.panics {
		panic("canvas exploded")
	}
	return render.Image{PNG: f.png, Width: render.Width, Height: render.Height(len(in.Participants), in.QR != nil)}
}

type fakeLedger struct {
	mu      sync.Mutex
	records []*models.ExportRecord
	err     error
}

func (l *fakeLedger) RecordExport(ctx context.Context, rec *models.ExportRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return l.err
}

type failingTarget struct{}

func (failingTarget) Deliver(ctx context.Context, a *Artifact) error {
	return errors.New("clipboard denied")
}

var fixedTime = time.UnixMilli(1700000000123)

func fixedClock() time.Time { return fixedTime }

func testSnapshotInput(t *testing.T) render.Input {
	t.Helper()
	s := session.New()
	id := s.Snapshot().Participants[0].ID
	require.NoError(t, s.UpdateAmount(id, "100000"))
	second := s.AddParticipant()
	require.NoError(t, s.UpdateAmount(second.ID, "200000"))
	s.SetDiscountValue("10")
	return InputFromSnapshot(s.Snapshot())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "chia-chi-phi-1700000000123.png", Filename(fixedTime))
}

func TestDownload_WritesFileAndRecords(t *testing.T) {
	dir := t.TempDir()
	ledger := &fakeLedger{}
	notices := &Recorder{}
	e := New(&fakeRenderer{png: []byte("png-bytes")}, WithLedger(ledger), WithNotifier(notices), WithClock(fixedClock))

	a, err := e.Download(context.Background(), testSnapshotInput(t), DirTarget{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "chia-chi-phi-1700000000123.png", a.Filename)
	assert.Equal(t, "image/png", a.MIMEType)

	data, err := os.ReadFile(filepath.Join(dir, a.Filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.Len(t, ledger.records, 1)
	rec := ledger.records[0]
	assert.Equal(t, models.ExportDownload, rec.Kind)
	assert.Equal(t, models.ExportOK, rec.Status)
	assert.Equal(t, 2, rec.ParticipantCount)
	assert.Equal(t, int64(300000), rec.TotalOriginal)
	assert.Equal(t, int64(270000), rec.TotalAfterDiscount)
	assert.Equal(t, int64(len("png-bytes")), rec.Bytes)
	assert.Equal(t, fixedTime.UnixMilli(), rec.CreatedAt)

	assert.Equal(t, Notice{Level: LevelInfo, Message: "Đã tải xuống chia-chi-phi-1700000000123.png"}, notices.Last())
	assert.False(t, e.Busy())
}

func TestCopy_DeliversToClipboardTarget(t *testing.T) {
	notices := &Recorder{}
	e := New(&fakeRenderer{png: []byte("png")}, WithNotifier(notices))
	clipboard := &CaptureTarget{}

	_, err := e.Copy(context.Background(), testSnapshotInput(t), clipboard)
	require.NoError(t, err)
	require.NotNil(t, clipboard.Last())
	assert.Equal(t, "image/png", clipboard.Last().MIMEType)
	assert.Equal(t, []byte("png"), clipboard.Last().Data)
	assert.Equal(t, "Đã copy ảnh vào clipboard!", notices.Last().Message)
}

func TestCopy_WriterTarget(t *testing.T) {
	var buf bytes.Buffer
	e := New(&fakeRenderer{png: []byte("png")}, WithNotifier(&Recorder{}))
	_, err := e.Copy(context.Background(), testSnapshotInput(t), WriterTarget{W: &buf})
	require.NoError(t, err)
	assert.Equal(t, "png", buf.String())
}

func TestExport_Failures(t *testing.T) {
	tests := []struct {
		name       string
		renderer   *fakeRenderer
		target     Target
		kind       models.ExportKind
		wantErr    error
		wantNotice string
	}{
		{
			name:       "empty image on download",
			renderer:   &fakeRenderer{},
			target:     &CaptureTarget{},
			kind:       models.ExportDownload,
			wantErr:    ErrEmptyImage,
			wantNotice: "Lỗi khi tải xuống. Vui lòng thử lại!",
		},
		{
			name:       "clipboard write fails",
			renderer:   &fakeRenderer{png: []byte("png")},
			target:     failingTarget{},
			kind:       models.ExportCopy,
			wantNotice: "Lỗi khi copy. Vui lòng thử lại!",
		},
		{
			name:       "renderer panics",
			renderer:   &fakeRenderer{panics: true},
			target:     &CaptureTarget{},
			kind:       models.ExportCopy,
			wantNotice: "Lỗi khi copy. Vui lòng thử lại!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			notices := &Recorder{}
			e := New(tt.renderer, WithLedger(ledger), WithNotifier(notices))

			a, err := e.Export(context.Background(), tt.kind, testSnapshotInput(t), tt.target)
			require.Error(t, err)
			assert.Nil(t, a)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.False(t, e.Busy(), "busy state is always reset")
			assert.Equal(t, LevelError, notices.Last().Level)
			assert.Equal(t, tt.wantNotice, notices.Last().Message)

			require.Len(t, ledger.records, 1)
			assert.Equal(t, models.ExportFailed, ledger.records[0].Status)
			assert.NotEmpty(t, ledger.records[0].Error)
			assert.Zero(t, ledger.records[0].Bytes)
		})
	}
}

func TestExport_LedgerErrorIsNotSurfaced(t *testing.T) {
	e := New(&fakeRenderer{png: []byte("png")}, WithLedger(&fakeLedger{err: errors.New("disk full")}), WithNotifier(&Recorder{}))
	_, err := e.Copy(context.Background(), testSnapshotInput(t), &CaptureTarget{})
	assert.NoError(t, err)
}

func TestExport_UnknownKind(t *testing.T) {
	e := New(&fakeRenderer{png: []byte("png")})
	_, err := e.Export(context.Background(), "print", render.Input{}, &CaptureTarget{})
	assert.Error(t, err)
}

func TestExport_BusyGate(t *testing.T) {
	fr := &fakeRenderer{png: []byte("png"), started: make(chan struct{}), release: make(chan struct{})}
	notices := &Recorder{}
	e := New(fr, WithNotifier(notices))
	in := testSnapshotInput(t)

	done := make(chan error, 1)
	go func() {
		_, err := e.Download(context.Background(), in, &CaptureTarget{})
		done <- err
	}()

	<-fr.started
	assert.True(t, e.Busy())
	_, err := e.Copy(context.Background(), in, &CaptureTarget{})
	assert.ErrorIs(t, err, ErrBusy)

	close(fr.release)
	require.NoError(t, <-done)
	assert.False(t, e.Busy())
	assert.Len(t, notices.Notices(), 1, "rejected attempt does not notify")
}

func TestDownload_RealRenderer(t *testing.T) {
	fonts, err := render.DefaultFonts()
	require.NoError(t, err)
	dir := t.TempDir()
	e := New(render.New(fonts), WithNotifier(&Recorder{}), WithClock(fixedClock))

	a, err := e.Download(context.Background(), testSnapshotInput(t), DirTarget{Dir: dir})
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, a.Filename))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestContextNotifier(t *testing.T) {
	e := New(&fakeRenderer{png: []byte("png")}, WithNotifier(ContextNotifier{}))

	rec := &Recorder{}
	ctx := ContextWithRecorder(context.Background(), rec)
	_, err := e.Copy(ctx, testSnapshotInput(t), &CaptureTarget{})
	require.NoError(t, err)
	assert.Equal(t, "Đã copy ảnh vào clipboard!", rec.Last().Message)

	// No recorder on the context: still fine.
	_, err = e.Copy(context.Background(), testSnapshotInput(t), &CaptureTarget{})
	require.NoError(t, err)
	assert.Len(t, rec.Notices(), 1)
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(ctx context.Context, n Notice) {
	panic("toast failed")
}

type panickingLedger struct{}

func (panickingLedger) RecordExport(ctx context.Context, rec *models.ExportRecord) error {
	panic("ledger failed")
}

func TestExport_BusyResetWhenCleanupPanics(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"notifier", []Option{WithNotifier(panickingNotifier{})}},
		{"ledger", []Option{WithNotifier(&Recorder{}), WithLedger(panickingLedger{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&fakeRenderer{png: []byte("png")}, tt.opts...)
			in := testSnapshotInput(t)

			assert.Panics(t, func() {
				_, _ = e.Download(context.Background(), in, &CaptureTarget{})
			})
			assert.False(t, e.Busy())
		})
	}
}
