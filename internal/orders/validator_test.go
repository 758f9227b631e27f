package orders

import (
	"testing"
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

func itemDraft() Draft {
	line := documents.LineItem{ReferenceID: 1, Quantity: 2, UnitPrice: 100, LineOrder: 1}
	documents.Recompute(&line)
	return Draft{
		DraftNumber:  "SO-705032024140902",
		DocumentDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		PartyID:      42,
		FinalTotal:   200,
		Lines:        []documents.LineItem{line},
	}
}

func TestValidatePasses(t *testing.T) {
	result := Validate(itemDraft())
	if !result.OK {
		t.Fatalf("expected pass, got %s: %s", result.Code, result.Message)
	}
	if result.FinalTotal != 200 {
		t.Fatalf("FinalTotal = %v, want 200", result.FinalTotal)
	}
}

func TestValidateShortCircuitOrder(t *testing.T) {
	// Earlier checks win even when later ones would also fail.
	draft := itemDraft()
	draft.DraftNumber = ""
	draft.PartyID = 0
	if result := Validate(draft); result.Code != CodeMissingDocumentNumber {
		t.Fatalf("code = %s, want %s", result.Code, CodeMissingDocumentNumber)
	}

	draft = itemDraft()
	draft.DocumentDate = time.Time{}
	draft.Lines = nil
	if result := Validate(draft); result.Code != CodeMissingDate {
		t.Fatalf("code = %s, want %s", result.Code, CodeMissingDate)
	}

	draft = itemDraft()
	draft.PartyID = 0
	draft.Lines = nil
	if result := Validate(draft); result.Code != CodeMissingParty {
		t.Fatalf("code = %s, want %s", result.Code, CodeMissingParty)
	}
}

func TestValidateSkipsEmptyRows(t *testing.T) {
	draft := itemDraft()
	draft.Lines = append(draft.Lines, documents.LineItem{LineOrder: 2})
	if result := Validate(draft); !result.OK {
		t.Fatalf("empty trailing row should not fail validation, got %s", result.Code)
	}

	draft.Lines = []documents.LineItem{{LineOrder: 1}}
	if result := Validate(draft); result.Code != CodeInsufficientLines {
		t.Fatalf("code = %s, want %s", result.Code, CodeInsufficientLines)
	}
}

func TestValidateRejectsNegativeLineTotal(t *testing.T) {
	draft := itemDraft()
	line := documents.LineItem{ReferenceID: 2, Quantity: 1, UnitPrice: -50, LineOrder: 2}
	documents.Recompute(&line)
	draft.Lines = append(draft.Lines, line)
	if result := Validate(draft); result.Code != CodeInvalidAmount {
		t.Fatalf("code = %s, want %s", result.Code, CodeInvalidAmount)
	}
}
