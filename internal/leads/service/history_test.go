package service

import (
	"testing"

	"salesops_backend/internal/leads/domain"
)

func TestHistoryNoteFormatting(t *testing.T) {
	got := historyNote(domain.StatusNew, domain.StatusContacted, "")
	want := `Status changed from "New" to "Contacted"`
	if got != want {
		t.Fatalf("note = %q, want %q", got, want)
	}

	got = historyNote(domain.StatusQuoted, domain.StatusSalePaymentDone, "paid via portal")
	want = `Status changed from "Quoted" to "Sale Payment Done". paid via portal`
	if got != want {
		t.Fatalf("note = %q, want %q", got, want)
	}
}

func TestRequestedStatusValidation(t *testing.T) {
	if status, err := requestedStatus(""); err != nil || status != "" {
		t.Fatalf("empty raw status: got (%q, %v)", status, err)
	}
	if status, err := requestedStatus("Follow up"); err != nil || status != domain.StatusFollowUp {
		t.Fatalf("valid raw status: got (%q, %v)", status, err)
	}
	if _, err := requestedStatus("Bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
