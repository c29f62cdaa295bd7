package models

import (
	"fmt"
	"strings"
)

// DiscountMode selects how DiscountSelection.Value is interpreted.
type DiscountMode string

const (
	// DiscountPercent takes Value percent off the original total.
	DiscountPercent DiscountMode = "percent"
	// DiscountAmount takes a flat Value off the original total.
	DiscountAmount DiscountMode = "amount"
	// DiscountFinal uses Value as the final total after discount.
	DiscountFinal DiscountMode = "final"
)

// DiscountModes lists all modes in display order.
var DiscountModes = []DiscountMode{DiscountPercent, DiscountAmount, DiscountFinal}

// Label returns the caption shown next to the discount input.
func (m DiscountMode) Label() string {
	switch m {
	case DiscountAmount:
		return "Số tiền giảm (VNĐ)"
	case DiscountFinal:
		return "Tổng tiền sau giảm (VNĐ)"
	default:
		return "Giảm giá (%)"
	}
}

// ParseDiscountMode validates a mode coming from outside the process.
func ParseDiscountMode(s string) (DiscountMode, error) {
	switch mode := DiscountMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case DiscountPercent, DiscountAmount, DiscountFinal:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown discount mode %q", s)
	}
}

// DiscountSelection is the discount as entered by the user.
// Value is kept raw; it may be empty or contain non-digit characters.
type DiscountSelection struct {
	Mode  DiscountMode
	Value string
}
