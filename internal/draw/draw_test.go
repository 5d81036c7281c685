package draw

import (
	"testing"

	"ddj/internal/apperr"
)

func TestDraw_Deterministic(t *testing.T) {
	seed := "deterministic_test_seed_1234"

	o1, err := Draw(seed, 42)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	o2, err := Draw(seed, 42)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	if o1 != o2 {
		t.Errorf("Draw() is not deterministic: got %v, %v", o1, o2)
	}
}

func TestDraw_DifferentRounds(t *testing.T) {
	seed := "another_test_seed_for_rounds"

	o1, _ := Draw(seed, 1)
	o2, _ := Draw(seed, 2)
	o3, _ := Draw(seed, 3)

	if o1 == o2 && o2 == o3 {
		t.Error("Draw() produced identical outcomes for different rounds (unlikely)")
	}
}

func TestDraw_MainNumbersValid(t *testing.T) {
	seed := "validity_test_seed_0000000000"

	for round := int64(0); round < 200; round++ {
		o, err := Draw(seed, round)
		if err != nil {
			t.Fatalf("Draw(%d) error = %v", round, err)
		}

		seen := map[int]bool{}
		for i, n := range o.Main {
			if n < 1 || n > MainPoolMax {
				t.Fatalf("round %d: main[%d] = %d out of range", round, i, n)
			}
			if seen[n] {
				t.Fatalf("round %d: duplicate main number %d", round, n)
			}
			seen[n] = true
			if i > 0 && o.Main[i-1] >= n {
				t.Fatalf("round %d: main not sorted ascending: %v", round, o.Main)
			}
		}

		if o.Chance < 1 || o.Chance > ChanceMax {
			t.Fatalf("round %d: chance = %d out of range", round, o.Chance)
		}
	}
}

func TestDraw_ShortSeedIsConfigError(t *testing.T) {
	_, err := Draw("short", 1)
	if err == nil {
		t.Fatal("Draw() with short seed: want error, got nil")
	}
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.ConfigError {
		t.Fatalf("Draw() with short seed: want ConfigError, got %v", err)
	}
}

func TestGenerateSeed_Unique(t *testing.T) {
	s1 := GenerateSeed()
	s2 := GenerateSeed()

	if s1 == s2 {
		t.Error("GenerateSeed() produced duplicate seeds")
	}
	if len(s1) != 64 {
		t.Errorf("GenerateSeed() length = %d, want 64", len(s1))
	}
}

func TestHashCommitment_Deterministic(t *testing.T) {
	seed := "commitment_test_seed"

	h1 := HashCommitment(seed)
	h2 := HashCommitment(seed)

	if h1 != h2 {
		t.Error("HashCommitment() is not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("HashCommitment() length = %d, want 64", len(h1))
	}
}
