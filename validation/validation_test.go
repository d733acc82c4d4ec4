package validation

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@b.com", ""},
		{"  contact@agence.fr ", ""},
		{"not-an-email", "invalid_email"},
		{"a@b", "invalid_email"},
		{"Bob <bob@x.com>", "invalid_email"},
		{"", "required"},
	}
	for _, tt := range tests {
		v := Violations{}
		Email("email", tt.in, v)
		if v["email"] != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, v["email"], tt.want)
		}
	}
}

func TestFirstViolationWins(t *testing.T) {
	v := Violations{}
	Required("nom", "", v)
	MinLen("nom", "", 2, v)
	if v["nom"] != "required" {
		t.Fatalf("expected required, got %q", v["nom"])
	}
}

func TestLengthAndChoices(t *testing.T) {
	v := Violations{}
	MinLen("password", "short", 8, v)
	MaxLen("sujet", "é", 1, v)
	OneOf("statut", "perdu", []string{"nouveau", "accepte"}, v)
	RangeInt("jours", 31, 1, 30, v)
	if v["password"] != "too_short" || v["statut"] != "invalid_choice" || v["jours"] != "out_of_range" {
		t.Fatalf("unexpected violations %v", v)
	}
	if _, ok := v["sujet"]; ok {
		t.Fatal("one rune is within MaxLen 1")
	}
	if v.Empty() {
		t.Fatal("expected violations")
	}
}

func TestMaxBytes(t *testing.T) {
	v := Violations{}
	MaxBytes("ascii", strings.Repeat("a", 72), 72, v)
	// 37 two-byte runes: within 72 characters, over 72 bytes.
	MaxBytes("accents", strings.Repeat("é", 37), 72, v)
	if _, ok := v["ascii"]; ok {
		t.Fatal("72 bytes is within the limit")
	}
	if v["accents"] != "too_long" {
		t.Fatalf("expected too_long, got %q", v["accents"])
	}
}
