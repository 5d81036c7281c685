package ledger

import "testing"

func TestFormatDOS(t *testing.T) {
	tests := []struct {
		name   string
		minor  int64
		want   string
	}{
		{"whole amount", 5000, "50.00"},
		{"with cents", 1234, "12.34"},
		{"zero", 0, "0.00"},
		{"single minor unit", 1, "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDOS(tt.minor); got != tt.want {
				t.Errorf("FormatDOS(%d) = %q, want %q", tt.minor, got, tt.want)
			}
		})
	}
}

func TestFloorWeighted(t *testing.T) {
	tests := []struct {
		amount int64
		weight float64
		want   int64
	}{
		{26, 0.35, 9},
		{26, 0.10, 2},
		{100, 0.25, 25},
		{3, 0.5, 1},
	}

	for _, tt := range tests {
		if got := FloorWeighted(tt.amount, tt.weight); got != tt.want {
			t.Errorf("FloorWeighted(%d, %v) = %d, want %d", tt.amount, tt.weight, got, tt.want)
		}
	}
}

func TestHashGiftCode_Deterministic(t *testing.T) {
	h1 := HashGiftCode("a_long_enough_seed_value", "ABCDEFGHJKMN")
	h2 := HashGiftCode("a_long_enough_seed_value", "ABCDEFGHJKMN")

	if h1 != h2 {
		t.Error("HashGiftCode is not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("HashGiftCode length = %d, want 64", len(h1))
	}
}

func TestHashGiftCode_DifferentCodesDiffer(t *testing.T) {
	h1 := HashGiftCode("seed", "AAAAAAAAAAAA")
	h2 := HashGiftCode("seed", "BBBBBBBBBBBB")

	if h1 == h2 {
		t.Error("HashGiftCode produced identical hashes for different codes")
	}
}

func TestCategoryWeights_SumToOne(t *testing.T) {
	var sum float64
	for _, w := range CategoryWeights {
		sum += w
	}
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("CategoryWeights sum = %v, want 1.0", sum)
	}
}
