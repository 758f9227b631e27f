package documents

// Recompute refreshes the derived monetary fields of a line from its
// editable inputs. The step order matches the posting backend so totals
// stay reproducible: base, discount, taxable, then each tax component.
// No rounding is applied here; values carry full float64 precision and
// are only rounded when a submission payload is built.
//
// Out-of-range input is not rejected: a negative quantity produces a
// negative line total, which document validation refuses to submit.
func Recompute(line *LineItem) {
	baseAmount := line.UnitPrice * line.Quantity
	line.DiscountAmount = baseAmount * line.DiscountPercent / 100
	line.TaxableAmount = baseAmount - line.DiscountAmount
	line.CGSTAmount = line.TaxableAmount * line.CGSTRatePercent / 100
	line.SGSTAmount = line.TaxableAmount * line.SGSTRatePercent / 100
	line.IGSTAmount = line.TaxableAmount * line.IGSTRatePercent / 100
	line.CessAmount = line.TaxableAmount * line.CessRatePercent / 100
	line.TotalTaxAmount = line.CGSTAmount + line.SGSTAmount + line.IGSTAmount + line.CessAmount
	line.LineTotal = line.TaxableAmount + line.TotalTaxAmount
}

// SplitGSTRate divides a combined intra-state GST rate evenly into its
// CGST and SGST halves.
func SplitGSTRate(totalRatePercent float64) (cgst, sgst float64) {
	half := totalRatePercent / 2
	return half, half
}

// ApplyRate assigns a combined tax rate to the line according to the rate
// mode: intra-state splits into CGST/SGST, inter-state goes to IGST.
func ApplyRate(line *LineItem, totalRatePercent float64, mode RateMode) {
	switch mode {
	case RateModeInterState:
		line.CGSTRatePercent = 0
		line.SGSTRatePercent = 0
		line.IGSTRatePercent = totalRatePercent
	default:
		line.CGSTRatePercent, line.SGSTRatePercent = SplitGSTRate(totalRatePercent)
		line.IGSTRatePercent = 0
	}
}

// Aggregate computes header totals from the current lines plus the
// header-level discount and round-off adjustment. It runs synchronously
// on every line or header change; there is no caching.
func Aggregate(lines []LineItem, headerDiscountPercent, roundOff float64) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.LineTotal
	}
	discountAmount := subtotal * headerDiscountPercent / 100
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		FinalTotal:     subtotal - discountAmount + roundOff,
	}
}
