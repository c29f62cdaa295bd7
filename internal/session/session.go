// Package session holds the state of one bill-splitting page: the participant
// list, the discount selection and the payment QR reference. Derived values
// are recomputed from that state on every Snapshot, so they are never stale.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/numfmt"
)

var ErrParticipantNotFound = errors.New("participant not found")

// DefaultName is the name given to the n-th participant (1-based).
func DefaultName(n int) string {
	return fmt.Sprintf("Người tham gia %d", n)
}

// Session is the authoritative state of one page. It is safe for concurrent use.
type Session struct {
	id string

	mu           sync.Mutex
	participants []models.Participant
	discount     models.DiscountSelection
	qr           string
	touched      time.Time
}

// Snapshot is an immutable view of a session with its derived values.
type Snapshot struct {
	SessionID    string
	Participants []models.Participant
	Discount     models.DiscountSelection
	QR           string
	Allocation   models.AllocationResult
	Summary      calculator.Summary
}

// New creates a session with one default participant and a 0% discount.
func New() *Session {
	s := &Session{
		id:       uuid.New().String(),
		discount: models.DiscountSelection{Mode: models.DiscountPercent, Value: "0"},
		touched:  time.Now(),
	}
	s.AddParticipant()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddParticipant appends a participant with a default name and a zero amount.
func (s *Session) AddParticipant() models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Participant{
		ID:   uuid.New().String(),
		Name: DefaultName(len(s.participants) + 1),
	}
	s.participants = append(s.participants, p)
	s.touch()
	return p
}

// RemoveParticipant deletes a participant by id.
func (s *Session) RemoveParticipant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, id)
	}
	s.participants = append(s.participants[:i], s.participants[i+1:]...)
	s.touch()
	return nil
}

// UpdateName renames a participant.
func (s *Session) UpdateName(id, name string) error {
	return s.update(id, func(p *models.Participant) { p.Name = name })
}

// UpdateAmount sets a participant's amount from raw input.
// Everything but digits is discarded: "100.000đ" becomes 100000.
func (s *Session) UpdateAmount(id, raw string) error {
	return s.update(id, func(p *models.Participant) { p.Amount = numfmt.ParseDigits(raw) })
}

// SetDiscountMode switches the discount mode and keeps the value.
func (s *Session) SetDiscountMode(mode models.DiscountMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discount.Mode = mode
	s.touch()
}

// SetDiscountValue stores the raw discount value.
func (s *Session) SetDiscountValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discount.Value = value
	s.touch()
}

// SetQR stores an opaque image reference for the payment QR. Empty clears it.
func (s *Session) SetQR(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qr = ref
	s.touch()
}

// Snapshot copies the current state and computes the allocation from it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	participants := make([]models.Participant, len(s.participants))
	copy(participants, s.participants)
	discount := s.discount
	qr := s.qr
	s.mu.Unlock()

	result := calculator.Allocate(participants, discount)
	return Snapshot{
		SessionID:    s.id,
		Participants: participants,
		Discount:     discount,
		QR:           qr,
		Allocation:   result,
		Summary:      calculator.Summarize(result, discount),
	}
}

// LastTouched returns the time of the last mutation.
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) update(id string, fn func(*models.Participant)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, id)
	}
	fn(&s.participants[i])
	s.touch()
	return nil
}

// indexOf must be called with mu held.
func (s *Session) indexOf(id string) int {
	for i := range s.participants {
		if s.participants[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) touch() {
	s.touched = time.Now()
}
