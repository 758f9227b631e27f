package orders

// ValidationCode identifies why an item document failed validation.
type ValidationCode string

const (
	CodeMissingDocumentNumber ValidationCode = "MISSING_DOCUMENT_NUMBER"
	CodeMissingDate           ValidationCode = "MISSING_DATE"
	CodeMissingParty          ValidationCode = "MISSING_PARTY"
	CodeInsufficientLines     ValidationCode = "INSUFFICIENT_LINES"
	CodeInvalidAmount         ValidationCode = "INVALID_AMOUNT"
)

// ValidationResult reports whether an item draft is ready for submission.
type ValidationResult struct {
	OK         bool           `json:"ok"`
	Code       ValidationCode `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	FinalTotal float64        `json:"final_total"`
}

func failed(code ValidationCode, message string) ValidationResult {
	return ValidationResult{Code: code, Message: message}
}

// Validate runs the required-field checks for item documents: number,
// date, party, at least one priced line, and no negative amounts. Unlike
// ledger vouchers there is no balance rule; negative totals are rejected
// because they can only come from out-of-range input.
func Validate(draft Draft) ValidationResult {
	if draft.DraftNumber == "" {
		return failed(CodeMissingDocumentNumber, "document number is missing")
	}
	if draft.DocumentDate.IsZero() {
		return failed(CodeMissingDate, "document date is required")
	}
	if draft.PartyID <= 0 {
		return failed(CodeMissingParty, "a customer or supplier must be selected")
	}

	valid := 0
	for _, line := range draft.Lines {
		if !line.Valid() {
			continue
		}
		if line.LineTotal < 0 {
			return failed(CodeInvalidAmount, "line amounts cannot be negative")
		}
		valid++
	}
	if valid < 1 {
		return failed(CodeInsufficientLines, "at least one line with a product is required")
	}
	if draft.FinalTotal < 0 {
		return failed(CodeInvalidAmount, "the document total cannot be negative")
	}

	return ValidationResult{OK: true, FinalTotal: draft.FinalTotal}
}
