package domain

import "testing"

func TestPaymentStatusDerivation(t *testing.T) {
	if got := PaymentStatusFor(0, 100000); got != PaymentStatusPending {
		t.Fatalf("expected pending for unpaid order, got %s", got)
	}
	if got := PaymentStatusFor(40000, 100000); got != PaymentStatusPartial {
		t.Fatalf("expected partial, got %s", got)
	}
	if got := PaymentStatusFor(100000, 100000); got != PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
	// A zero-total order with no payment stays pending.
	if got := PaymentStatusFor(0, 0); got != PaymentStatusPending {
		t.Fatalf("expected pending for zero-total unpaid order, got %s", got)
	}
}

func TestApplyPaymentAmountsClampsOverpayment(t *testing.T) {
	newPay, due, applied, change := ApplyPaymentAmounts(100000, 40000, 70000)
	if applied != 60000 {
		t.Fatalf("expected applied 60000, got %d", applied)
	}
	if change != 10000 {
		t.Fatalf("expected change 10000, got %d", change)
	}
	if newPay != 100000 || due != 0 {
		t.Fatalf("expected pay=100000 due=0, got pay=%d due=%d", newPay, due)
	}
}

func TestApplyPaymentAmountsPartial(t *testing.T) {
	newPay, due, applied, change := ApplyPaymentAmounts(100000, 0, 40000)
	if applied != 40000 || change != 0 {
		t.Fatalf("expected applied 40000 change 0, got %d/%d", applied, change)
	}
	if newPay != 40000 || due != 60000 {
		t.Fatalf("expected pay=40000 due=60000, got pay=%d due=%d", newPay, due)
	}
}

func TestDueAmountFloorsAtZero(t *testing.T) {
	if got := DueAmount(36000, 100000); got != 0 {
		t.Fatalf("expected due floored at 0, got %d", got)
	}
}
