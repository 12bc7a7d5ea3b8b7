package refgen

import (
	"strings"
	"testing"
	"time"
)

func TestNewRefFormat(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	ref := newRefAt("LD", at)

	parts := strings.Split(ref, "-")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d (%q)", len(parts), ref)
	}
	if parts[0] != "LD" {
		t.Fatalf("expected prefix LD, got %q", parts[0])
	}
	if parts[1] != "20240110" {
		t.Fatalf("expected date segment 20240110, got %q", parts[1])
	}
	if len(parts[2]) != suffixLen {
		t.Fatalf("expected suffix length %d, got %d", suffixLen, len(parts[2]))
	}
	for _, r := range parts[2] {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("suffix contains character outside alphabet: %q", r)
		}
	}
}

func TestNewRefUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewRef("SA")
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %q", ref)
		}
		seen[ref] = true
	}
}
