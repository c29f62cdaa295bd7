// Package numfmt converts between the raw strings typed into the page and the
// whole-unit integers the allocation engine works with, and formats integers
// for display using Vietnamese digit grouping (1.234.567).
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the display locale for all amounts.
var Locale = language.Vietnamese

// Digits keeps only the ASCII digits of s. A leading minus sign is dropped
// along with everything else.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ParseDigits reads the digits of s as a non-negative integer.
// Empty input is 0 and values beyond int64 saturate at math.MaxInt64.
func ParseDigits(s string) int64 {
	d := Digits(s)
	if d == "" {
		return 0
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// Round rounds half up like JavaScript's Math.round and saturates to the
// int64 range. NaN rounds to 0.
func Round(f float64) int64 {
	r := math.Floor(f)
	if f-r >= 0.5 {
		r++
	}
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}

// Integer formats n with locale thousands separators and no decimals.
func Integer(n int64) string {
	return message.NewPrinter(Locale).Sprintf("%d", n)
}

// Price formats the digits of a raw input string, e.g. "100000đ" -> "100.000".
func Price(raw string) string {
	return Integer(ParseDigits(raw))
}
