// Package calculator implements the allocation engine: it turns a participant
// list and a discount selection into totals and per-participant payments.
//
// Algorithm:
//   - total_original = sum(amount)
//   - total_after = clamp(total_original - discount) per mode
//   - payment = round(amount / total_original * total_after)
//
// Every payment is rounded on its own, so the payments may not add up exactly
// to the rounded total. No remainder is redistributed.
//
// All functions are pure and never fail: malformed input coerces to zero.
package calculator

import (
	"math"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/numfmt"
)

// ParseDiscount reads the digits of a raw discount value.
// Signs and separators are dropped, so "-10" reads as 10.
func ParseDiscount(value string) int64 {
	return numfmt.ParseDigits(value)
}

// ComputeTotals returns the original total and the total after discount.
// An unknown mode is treated as DiscountPercent. Amounts are summed exactly,
// negative ones included; the sum saturates at the int64 bounds.
func ComputeTotals(participants []models.Participant, sel models.DiscountSelection) (int64, float64) {
	var totalOriginal int64
	for _, p := range participants {
		totalOriginal = addSaturating(totalOriginal, p.Amount)
	}

	discountNum := float64(ParseDiscount(sel.Value))
	total := float64(totalOriginal)

	var after float64
	switch sel.Mode {
	case models.DiscountAmount:
		after = total - discountNum
	case models.DiscountFinal:
		after = discountNum
	default:
		after = total - total*discountNum/100
	}

	return totalOriginal, clamp(after)
}

// ComputePayments allocates totalAfterDiscount across participants in
// proportion to their original amounts.
func ComputePayments(participants []models.Participant, totalOriginal int64, totalAfterDiscount float64) []models.Payment {
	payments := make([]models.Payment, len(participants))
	for i, p := range participants {
		payments[i].ParticipantID = p.ID
		if totalOriginal == 0 {
			continue
		}
		proportion := float64(p.Amount) / float64(totalOriginal)
		payments[i].Amount = numfmt.Round(proportion * totalAfterDiscount)
	}
	return payments
}

// Allocate runs ComputeTotals and ComputePayments.
func Allocate(participants []models.Participant, sel models.DiscountSelection) models.AllocationResult {
	totalOriginal, totalAfter := ComputeTotals(participants, sel)
	return models.AllocationResult{
		TotalOriginal:      totalOriginal,
		TotalAfterDiscount: totalAfter,
		Payments:           ComputePayments(participants, totalOriginal, totalAfter),
	}
}

func addSaturating(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// clamp floors v at zero. NaN also becomes zero.
func clamp(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}
