package utils

import (
	"strings"
	"testing"
)

func TestNewJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := NewJoinCode()
		if len(code) != 6 {
			t.Fatalf("len(%q) = %d, want 6", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		// 0, O, 1 and I are excluded to keep codes readable aloud.
		if strings.ContainsAny(code, "0O1I") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("only %d distinct codes out of 50", len(seen))
	}
}

func TestNewAccessCode(t *testing.T) {
	code := NewAccessCode("party")
	if !strings.HasPrefix(code, "PARTY-") {
		t.Fatalf("code = %q, want uppercased PARTY- prefix", code)
	}
	if got := len(code) - len("PARTY-"); got != 6 {
		t.Fatalf("random part length = %d, want 6", got)
	}
}
