package auth

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	if tok, _ := s.Token(ctx); tok != "" {
		t.Fatalf("Token = %q, want empty", tok)
	}
	if err := s.SetToken(ctx, "abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if tok, _ := s.Token(ctx); tok != "abc" {
		t.Errorf("Token = %q, want %q", tok, "abc")
	}

	// Clearing twice is fine.
	for i := 0; i < 2; i++ {
		if err := s.ClearToken(ctx); err != nil {
			t.Fatalf("ClearToken: %v", err)
		}
	}
	if tok, _ := s.Token(ctx); tok != "" {
		t.Errorf("Token after clear = %q, want empty", tok)
	}
}
