package documents

import (
	"testing"
	"time"
)

func TestGenerateNumberFormat(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 9, 2, 123*int(time.Millisecond), time.UTC)

	got := GenerateNumber("PO", 7, now, false)
	if got != "PO-705032024140902" {
		t.Fatalf("number %q want PO-705032024140902", got)
	}

	got = GenerateNumber("PO", 7, now, true)
	if got != "PO-705032024140902123" {
		t.Fatalf("number with millis %q want PO-705032024140902123", got)
	}
}

func TestGenerateNumberZeroPadding(t *testing.T) {
	now := time.Date(2025, 1, 9, 3, 5, 7, 4*int(time.Millisecond), time.UTC)
	got := GenerateNumber("JV", 42, now, true)
	if got != "JV-4209012025030507004" {
		t.Fatalf("number %q want JV-4209012025030507004", got)
	}
}

func TestGenerateNumberDeterministic(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 59, 999*int(time.Millisecond), time.UTC)
	a := GenerateNumber("CV", 3, now, true)
	b := GenerateNumber("CV", 3, now, true)
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
}

func TestNumberForUsesTypeConfig(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 9, 2, 0, time.UTC)

	journal, err := NumberFor(TypeJournal, 7, now)
	if err != nil {
		t.Fatalf("NumberFor journal: %v", err)
	}
	if journal != "JV-705032024140902000" {
		t.Fatalf("journal number %q", journal)
	}

	order, err := NumberFor(TypeSalesOrder, 7, now)
	if err != nil {
		t.Fatalf("NumberFor sales order: %v", err)
	}
	if order != "SO-705032024140902" {
		t.Fatalf("sales order number %q", order)
	}

	if _, err := NumberFor(DocumentType("BOGUS"), 7, now); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
