package models

// Participant represents one person sharing the bill.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	// IDs are never reused within a session, even after removal.
	ID string

	// Name is the display name (e.g., "Người tham gia 1").
	Name string

	// Amount is the participant's original cost in whole currency units.
	Amount int64
}

// Payment is the amount one participant owes after the discount is allocated.
type Payment struct {
	ParticipantID string
	Amount        int64
}

// AllocationResult is the output of the allocation engine.
type AllocationResult struct {
	// TotalOriginal is the sum of all participant amounts.
	TotalOriginal int64

	// TotalAfterDiscount is the discounted total, clamped to >= 0.
	TotalAfterDiscount float64

	// Payments holds one entry per participant, in participant order.
	// Their sum only approximates round(TotalAfterDiscount): each payment
	// is rounded on its own.
	Payments []Payment
}

// PaymentFor returns the payment for the given participant, or 0 if unknown.
func (r AllocationResult) PaymentFor(participantID string) int64 {
	for _, p := range r.Payments {
		if p.ParticipantID == participantID {
			return p.Amount
		}
	}
	return 0
}

// SumPayments returns the sum of all payments.
func (r AllocationResult) SumPayments() int64 {
	var sum int64
	for _, p := range r.Payments {
		sum += p.Amount
	}
	return sum
}
