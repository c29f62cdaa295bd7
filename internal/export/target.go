package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Artifact is a rendered summary ready to be delivered.
type Artifact struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Target receives an artifact: a download folder, a clipboard, a response body.
type Target interface {
	Deliver(ctx context.Context, a *Artifact) error
}

// DirTarget saves artifacts into a directory, like a browser download.
type DirTarget struct {
	Dir string
}

func (t DirTarget) Deliver(ctx context.Context, a *Artifact) error {
	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	path := filepath.Join(t.Dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriterTarget streams the payload, e.g. to stdout for a clipboard tool.
type WriterTarget struct {
	W io.Writer
}

func (t WriterTarget) Deliver(ctx context.Context, a *Artifact) error {
	if _, err := t.W.Write(a.Data); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// CaptureTarget keeps the last delivered artifact in memory.
type CaptureTarget struct {
	mu   sync.Mutex
	last *Artifact
}

func (t *CaptureTarget) Deliver(ctx context.Context, a *Artifact) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = a
	return nil
}

// Last returns the last delivered artifact, or nil.
func (t *CaptureTarget) Last() *Artifact {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
