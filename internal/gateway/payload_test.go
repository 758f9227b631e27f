package gateway

import (
	"testing"

	"github.com/draftdesk/draftdesk/internal/documents"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{314.499999999, 314.5},
		{16.2000000001, 16.2},
		{2.675, 2.68},
		{-0.455, -0.46},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewItemPayloadRoundsAmounts(t *testing.T) {
	line := documents.LineItem{
		ReferenceID:     3,
		Quantity:        3,
		UnitPrice:       33.333333,
		DiscountPercent: 5,
	}
	documents.ApplyRate(&line, 18, documents.RateModeIntraState)
	documents.Recompute(&line)

	item := NewItemPayload(line)
	if item.TaxableAmount != 95.0 {
		t.Errorf("TaxableAmount = %v, want 95.0", item.TaxableAmount)
	}
	if item.CGSTAmount != 8.55 {
		t.Errorf("CGSTAmount = %v, want 8.55", item.CGSTAmount)
	}
	if item.LineTotal != 112.1 {
		t.Errorf("LineTotal = %v, want 112.1", item.LineTotal)
	}
}
