package auth

import "testing"

func TestGenerateStateUniqueness(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState: %v", err)
		}
		if state == "" {
			t.Fatal("GenerateState returned empty token")
		}
		if _, dup := seen[state]; dup {
			t.Fatalf("duplicate state token after %d generations: %s", i, state)
		}
		seen[state] = struct{}{}
	}
}

func TestGenerateStateLength(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	// 32 random bytes encode to 43 unpadded base64 characters.
	if len(state) != 43 {
		t.Fatalf("got state length %d, want 43", len(state))
	}
}
