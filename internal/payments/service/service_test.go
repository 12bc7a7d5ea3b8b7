package service

import "testing"

func TestPaymentStatusValidation(t *testing.T) {
	for _, status := range []string{"pending", "paid", "disputed", "refunding", "refunded"} {
		if !validPaymentStatuses[status] {
			t.Fatalf("expected status %q to be valid", status)
		}
	}
	for _, status := range []string{"", "Paid", "chargeback", "done"} {
		if validPaymentStatuses[status] {
			t.Fatalf("expected status %q to be invalid", status)
		}
	}
}
