package utils

import (
	"github.com/shopspring/decimal"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}

// RoundTo2 rounds a meter value to the 2 decimal places used everywhere in
// usage reports.
func RoundTo2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundPtrTo2 rounds a nullable meter value, preserving null.
func RoundPtrTo2(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	rounded := d.Round(2)
	return &rounded
}

func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
