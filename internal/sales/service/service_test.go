package service

import "testing"

func TestStageValidation(t *testing.T) {
	for _, stage := range []string{"new", "processing", "ordered", "shipped", "delivered"} {
		if !validStages[stage] {
			t.Fatalf("expected stage %q to be valid", stage)
		}
	}
	for _, stage := range []string{"", "Shipped", "done", "cancelled"} {
		if validStages[stage] {
			t.Fatalf("expected stage %q to be invalid", stage)
		}
	}
}
