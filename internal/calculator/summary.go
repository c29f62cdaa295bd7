package calculator

import (
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/numfmt"
)

// Summary is the display form of an allocation: the three summary cards
// shown above the export buttons.
type Summary struct {
	TotalOriginal      string
	TotalAfterDiscount string

	// DiscountLabel describes the discount in the selected mode,
	// e.g. "10%" or "50.000 VND".
	DiscountLabel string

	// ShowDiscount is false when no discount was entered.
	ShowDiscount bool

	// DiscountAmount is TotalOriginal - round(TotalAfterDiscount).
	// It is negative when a final total above the original was entered.
	DiscountAmount int64
}

// Summarize formats an allocation result for display.
func Summarize(result models.AllocationResult, sel models.DiscountSelection) Summary {
	after := numfmt.Round(result.TotalAfterDiscount)
	s := Summary{
		TotalOriginal:      numfmt.Integer(result.TotalOriginal),
		TotalAfterDiscount: numfmt.Integer(after),
		ShowDiscount:       sel.Value != "" && sel.Value != "0",
		DiscountAmount:     result.TotalOriginal - after,
	}

	switch sel.Mode {
	case models.DiscountAmount:
		s.DiscountLabel = numfmt.Price(sel.Value) + " VND"
	case models.DiscountFinal:
		s.DiscountLabel = numfmt.Integer(s.DiscountAmount) + " VND"
	default:
		s.DiscountLabel = numfmt.Digits(sel.Value) + "%"
	}
	return s
}
