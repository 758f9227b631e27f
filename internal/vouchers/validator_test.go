package vouchers

import (
	"testing"
	"time"
)

func draftFixture(lines ...VoucherLine) Draft {
	return Draft{
		ID:           1,
		TenantID:     7,
		DraftNumber:  "JV-705032024140902123",
		DocumentDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:       StatusDraft,
		Lines:        lines,
	}
}

func TestValidateBalancedJournal(t *testing.T) {
	draft := draftFixture(
		VoucherLine{AccountID: 1, Debit: 500, LineOrder: 1},
		VoucherLine{AccountID: 2, Credit: 500, LineOrder: 2},
	)
	result := Validate(draft)
	if !result.OK {
		t.Fatalf("expected pass, got %s: %s", result.Code, result.Message)
	}
	if result.TotalAmount != 500 {
		t.Fatalf("total amount %.2f want 500", result.TotalAmount)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("valid lines %d want 2", len(result.Lines))
	}

	draft.Lines[1].Credit = 499
	result = Validate(draft)
	if result.OK || result.Code != CodeUnbalancedEntry {
		t.Fatalf("expected UNBALANCED_ENTRY, got ok=%v code=%s", result.OK, result.Code)
	}
}

func TestValidateBalanceTolerance(t *testing.T) {
	draft := draftFixture(
		VoucherLine{AccountID: 1, Debit: 100.009},
		VoucherLine{AccountID: 2, Credit: 100},
	)
	if result := Validate(draft); !result.OK {
		t.Fatalf("0.009 difference should pass, got %s", result.Code)
	}

	draft.Lines[0].Debit = 100.02
	if result := Validate(draft); result.OK || result.Code != CodeUnbalancedEntry {
		t.Fatalf("0.02 difference should fail with UNBALANCED_ENTRY, got ok=%v code=%s", result.OK, result.Code)
	}
}

func TestValidateMinimumLines(t *testing.T) {
	// Empty rows and amountless rows do not count toward the minimum.
	draft := draftFixture(
		VoucherLine{AccountID: 1, Debit: 500},
		VoucherLine{},
		VoucherLine{AccountID: 3},
	)
	result := Validate(draft)
	if result.OK || result.Code != CodeInsufficientLines {
		t.Fatalf("expected INSUFFICIENT_LINES, got ok=%v code=%s", result.OK, result.Code)
	}

	draft.Lines[2].Credit = 500
	if result := Validate(draft); !result.OK {
		t.Fatalf("two valid balanced lines should pass, got %s", result.Code)
	}
}

func TestValidateShortCircuitOrder(t *testing.T) {
	draft := draftFixture()
	draft.DraftNumber = ""
	draft.DocumentDate = time.Time{}
	if result := Validate(draft); result.Code != CodeMissingDocumentNumber {
		t.Fatalf("expected MISSING_DOCUMENT_NUMBER first, got %s", result.Code)
	}

	draft.DraftNumber = "JV-1"
	if result := Validate(draft); result.Code != CodeMissingDate {
		t.Fatalf("expected MISSING_DATE second, got %s", result.Code)
	}
}

func TestValidateAllowsDualSidedLines(t *testing.T) {
	// A line carrying both a debit and a credit is accepted as long as
	// the document balances in aggregate.
	draft := draftFixture(
		VoucherLine{AccountID: 1, Debit: 300, Credit: 100},
		VoucherLine{AccountID: 2, Debit: 50, Credit: 250},
	)
	if result := Validate(draft); !result.OK {
		t.Fatalf("dual-sided balanced lines should pass, got %s", result.Code)
	}
}

func TestContraLines(t *testing.T) {
	lines, result := ContraLines(10, 20, 1500)
	if !result.OK {
		t.Fatalf("expected pass, got %s", result.Code)
	}
	if len(lines) != 2 {
		t.Fatalf("contra lines %d want 2", len(lines))
	}
	if lines[0].AccountID != 20 || lines[0].Debit != 1500 || lines[0].Credit != 0 {
		t.Fatalf("destination line %+v", lines[0])
	}
	if lines[1].AccountID != 10 || lines[1].Credit != 1500 || lines[1].Debit != 0 {
		t.Fatalf("source line %+v", lines[1])
	}
	if result.TotalAmount != 1500 {
		t.Fatalf("total amount %.2f want 1500", result.TotalAmount)
	}
}

func TestContraLinesRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -25} {
		if _, result := ContraLines(10, 20, amount); result.OK || result.Code != CodeInvalidAmount {
			t.Fatalf("amount %.2f: expected INVALID_AMOUNT, got ok=%v code=%s", amount, result.OK, result.Code)
		}
	}
}
