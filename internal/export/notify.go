package export

import (
	"context"
	"log/slog"
	"sync"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a message shown to the user after an export.
type Notice struct {
	Level   Level
	Message string
}

// Notifier tells the user how an export went.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// SlogNotifier writes notices to the default logger.
type SlogNotifier struct{}

func (SlogNotifier) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, n.Message)
}

type recorderKey struct{}

// ContextWithRecorder attaches r to ctx so a ContextNotifier can reach it.
func ContextWithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// ContextNotifier logs every notice and also hands it to the Recorder
// attached to the context, if any. Servers use it to return the notice
// of one request in that request's response.
type ContextNotifier struct{}

func (ContextNotifier) Notify(ctx context.Context, n Notice) {
	if r, ok := ctx.Value(recorderKey{}).(*Recorder); ok {
		r.Notify(ctx, n)
	}
	SlogNotifier{}.Notify(ctx, n)
}

// Recorder collects notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(ctx context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the collected notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, or a zero Notice.
func (r *Recorder) Last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}
