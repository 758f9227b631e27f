package vouchers

import "math"

// BalanceTolerance is the largest debit/credit difference still accepted
// as balanced, in currency units.
const BalanceTolerance = 0.01

// ValidationCode identifies why a draft failed validation.
type ValidationCode string

const (
	CodeMissingDocumentNumber ValidationCode = "MISSING_DOCUMENT_NUMBER"
	CodeMissingDate           ValidationCode = "MISSING_DATE"
	CodeInsufficientLines     ValidationCode = "INSUFFICIENT_LINES"
	CodeUnbalancedEntry       ValidationCode = "UNBALANCED_ENTRY"
	CodeInvalidAmount         ValidationCode = "INVALID_AMOUNT"
)

// ValidationResult reports whether a draft is ready for submission. It is
// always a recoverable value, never an error: a failed result blocks
// submission and leaves the draft untouched for correction.
type ValidationResult struct {
	OK          bool           `json:"ok"`
	Code        ValidationCode `json:"code,omitempty"`
	Message     string         `json:"message,omitempty"`
	TotalDebit  float64        `json:"total_debit"`
	TotalCredit float64        `json:"total_credit"`
	TotalAmount float64        `json:"total_amount"`
	Lines       []VoucherLine  `json:"lines,omitempty"`
}

func failed(code ValidationCode, message string) ValidationResult {
	return ValidationResult{Code: code, Message: message}
}

// Validate runs the sequential double-entry checks over a draft,
// short-circuiting on the first failure: document number, date, minimum
// valid lines, then aggregate balance within BalanceTolerance.
//
// A single line carrying both a debit and a credit still passes as long
// as the sums balance; per-line exclusivity is intentionally not
// enforced here.
func Validate(draft Draft) ValidationResult {
	if draft.DraftNumber == "" {
		return failed(CodeMissingDocumentNumber, "voucher number is missing")
	}
	if draft.DocumentDate.IsZero() {
		return failed(CodeMissingDate, "voucher date is required")
	}

	valid := make([]VoucherLine, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		if line.Valid() {
			valid = append(valid, line)
		}
	}
	if len(valid) < 2 {
		return failed(CodeInsufficientLines, "at least two lines with an account and an amount are required")
	}

	var totalDebit, totalCredit float64
	for _, line := range valid {
		totalDebit += line.Debit
		totalCredit += line.Credit
	}
	if math.Abs(totalDebit-totalCredit) > BalanceTolerance {
		return failed(CodeUnbalancedEntry, "total debits must equal total credits")
	}

	return ValidationResult{
		OK:          true,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		TotalAmount: totalDebit,
		Lines:       valid,
	}
}

// ContraLines builds the balanced two-line transfer between two cash or
// bank accounts of the same entity. The amount must be positive.
func ContraLines(fromAccountID, toAccountID int64, amount float64) ([]VoucherLine, ValidationResult) {
	if amount <= 0 {
		return nil, failed(CodeInvalidAmount, "transfer amount must be greater than zero")
	}
	lines := []VoucherLine{
		{AccountID: toAccountID, Debit: amount, LineOrder: 1},
		{AccountID: fromAccountID, Credit: amount, LineOrder: 2},
	}
	return lines, ValidationResult{OK: true, TotalDebit: amount, TotalCredit: amount, TotalAmount: amount, Lines: lines}
}
