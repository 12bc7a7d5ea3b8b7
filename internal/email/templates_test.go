package email

import (
	"strings"
	"testing"
)

func TestRenderFollowupReminderTemplate(t *testing.T) {
	content, err := renderEmailTemplate("followup_reminder.html", followupReminderEmailData{
		baseEmailData: baseEmailData{Title: "Follow-up due", Heading: "Follow-up due"},
		AgentName:     "Dana",
		CustomerName:  "Acme Corp",
		LeadRef:       "LD-20240301-ABC123",
		DueAt:         "Fri, 01 Mar 2024 09:00",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Dana", "Acme Corp", "LD-20240301-ABC123", "Follow-up due"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered template missing %q", want)
		}
	}
}

func TestRenderSaleRecordedTemplate(t *testing.T) {
	content, err := renderEmailTemplate("sale_recorded.html", saleRecordedEmailData{
		baseEmailData:   baseEmailData{Title: "Sale recorded", Heading: "Sale recorded"},
		AgentName:       "Dana",
		CustomerName:    "Acme Corp",
		LeadRef:         "LD-20240301-ABC123",
		AmountFormatted: formatCurrencyUSD(250000),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "$2500.00") {
		t.Fatalf("rendered template missing amount, got:\n%s", content)
	}
}

func TestFormatCurrencyUSD(t *testing.T) {
	if got := formatCurrencyUSD(199); got != "$1.99" {
		t.Fatalf("formatCurrencyUSD(199) = %q", got)
	}
	if got := formatCurrencyUSD(0); got != "$0.00" {
		t.Fatalf("formatCurrencyUSD(0) = %q", got)
	}
}
