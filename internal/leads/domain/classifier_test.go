package domain

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		old  Status
		new  Status
		want Effects
	}{
		{
			name: "no status change requested",
			old:  StatusContacted,
			new:  "",
			want: Effects{},
		},
		{
			name: "same status is a no-op",
			old:  StatusFollowUp,
			new:  StatusFollowUp,
			want: Effects{},
		},
		{
			name: "new to follow up",
			old:  StatusNew,
			new:  StatusFollowUp,
			want: Effects{EnteringFollowup: true},
		},
		{
			name: "contacted to payment follow up",
			old:  StatusContacted,
			new:  StatusPaymentFollowUp,
			want: Effects{EnteringFollowup: true},
		},
		{
			name: "follow up to payment follow up does not re-fire",
			old:  StatusFollowUp,
			new:  StatusPaymentFollowUp,
			want: Effects{},
		},
		{
			name: "payment follow up to delivery follow up does not re-fire",
			old:  StatusPaymentFollowUp,
			new:  StatusDeliveryFollowUp,
			want: Effects{},
		},
		{
			name: "entering sale payment done",
			old:  StatusPaymentFollowUp,
			new:  StatusSalePaymentDone,
			want: Effects{EnteringSalePaymentDone: true},
		},
		{
			name: "entering product purchased",
			old:  StatusSalePaymentDone,
			new:  StatusProductPurchased,
			want: Effects{EnteringProductPurchased: true},
		},
		{
			name: "leaving product purchased fires nothing",
			old:  StatusProductPurchased,
			new:  StatusShipped,
			want: Effects{},
		},
		{
			name: "toggling back into sale payment done fires again",
			old:  StatusDispute,
			new:  StatusSalePaymentDone,
			want: Effects{EnteringSalePaymentDone: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.old, tt.new)
			if got != tt.want {
				t.Fatalf("Classify(%q, %q) = %+v, want %+v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestIsFollowup(t *testing.T) {
	for _, s := range []Status{StatusFollowUp, StatusPaymentFollowUp, StatusDeliveryFollowUp} {
		if !s.IsFollowup() {
			t.Fatalf("expected %q to be a follow-up status", s)
		}
	}
	if StatusNew.IsFollowup() {
		t.Fatalf("New must not be a follow-up status")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusSalePaymentDone.Valid() {
		t.Fatalf("expected known status to be valid")
	}
	if Status("Bogus").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}
