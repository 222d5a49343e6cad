package domain

// DueAmount derives the outstanding balance, floored at zero.
func DueAmount(grandTotalCents, payAmountCents int64) int64 {
	due := grandTotalCents - payAmountCents
	if due < 0 {
		return 0
	}
	return due
}

// PaymentStatusFor derives the payment status from cumulative payments:
// paid when nothing is due and something was paid, partial when some but not
// all of the total was paid, pending otherwise.
func PaymentStatusFor(payAmountCents, grandTotalCents int64) string {
	due := DueAmount(grandTotalCents, payAmountCents)
	switch {
	case due == 0 && payAmountCents > 0:
		return PaymentStatusPaid
	case payAmountCents > 0 && payAmountCents < grandTotalCents:
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// ApplyPaymentAmounts clamps a payment top-up to the outstanding balance.
// Overpayment is adjusted, not rejected: the excess comes back as change.
func ApplyPaymentAmounts(grandTotalCents, currentPayCents, payCents int64) (newPayCents, dueCents, appliedCents, changeCents int64) {
	due := DueAmount(grandTotalCents, currentPayCents)
	appliedCents = payCents
	if appliedCents > due {
		appliedCents = due
	}
	changeCents = payCents - appliedCents
	newPayCents = currentPayCents + appliedCents
	dueCents = DueAmount(grandTotalCents, newPayCents)
	return newPayCents, dueCents, appliedCents, changeCents
}
