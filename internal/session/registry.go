package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/billsplit/internal/metrics"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry keeps live sessions in memory. Nothing is written to disk:
// a discarded or expired session is gone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	onRemove func(id string)
}

// NewRegistry creates a registry. A ttl <= 0 disables expiry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// OnRemove registers fn to run after a session is discarded or expires.
// It must be called before the registry is shared.
func (r *Registry) OnRemove(fn func(id string)) {
	r.onRemove = fn
}

// Create starts a new session and registers it.
func (r *Registry) Create() *Session {
	s := New()
	r.mu.Lock()
	r.sessions[s.ID()] = s
	metrics.Sessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return s
}

// Get looks up a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Discard removes a session.
func (r *Registry) Discard(id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	metrics.Sessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if r.onRemove != nil {
		r.onRemove(id)
	}
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep discards sessions not touched within the ttl and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if now.Sub(s.LastTouched()) > r.ttl {
			delete(r.sessions, id)
			expired = append(expired, id)
		}
	}
	remaining := len(r.sessions)
	metrics.Sessions.Set(float64(remaining))
	r.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	slog.Debug("Expired sessions swept", "removed", len(expired), "remaining", remaining)
	if r.onRemove != nil {
		for _, id := range expired {
			r.onRemove(id)
		}
	}
	return len(expired)
}

// RunSweeper sweeps every interval until stop is closed.
func (r *Registry) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}
