package postgres

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator(t *testing.T) {
	g := NewULIDGenerator()

	a, b := g.Generate(), g.Generate()
	if b == a {
		t.Fatalf("expected value other than %v", a)
	}

	_, err := ulid.Parse(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDigitCodeGenerator(t *testing.T) {
	g := NewDigitCodeGenerator(6)

	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected %d items, got %d", 6, len(code))
		}
		for _, c := range code {
			if !(c >= '0' && c <= '9') {
				t.Fatalf("expected c >= '0' && c <= '9'")
			}
		}
	}
}
