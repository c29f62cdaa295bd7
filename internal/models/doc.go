// Package models defines the core domain models for billsplit.
//
// # Models
//
//   - Participant: a named party with an original cost share
//   - DiscountSelection: the raw discount mode and value entered by the user
//   - AllocationResult: totals and per-participant payments derived from the two above
//   - ExportRecord: one download or copy attempt of the rendered summary
//
// Amounts are whole currency units (VND) and are stored as int64. The total after
// discount is kept as float64 because percentage discounts can produce fractions;
// it is rounded only for display.
//
// AllocationResult is derived data. It is recomputed from the participant list and
// discount selection on every change and never mutated directly.
package models
