package betting

import "testing"

func TestNormalize_DedupsAndSorts(t *testing.T) {
	got, err := Normalize([]int{7, 3, 7, 19, 11}, 2, 10)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	want := []int{3, 7, 11, 19}
	if len(got) != len(want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize() = %v, want %v", got, want)
		}
	}
}

func TestNormalize_TooFewAfterDedup(t *testing.T) {
	if _, err := Normalize([]int{1, 1, 1}, 1, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for 3 unique nums")
	}
}

func TestNormalize_ExactlyFourAccepted(t *testing.T) {
	if _, err := Normalize([]int{1, 2, 3, 4}, 1, 10); err != nil {
		t.Fatalf("Normalize() error = %v, want nil for 4 nums", err)
	}
}

func TestNormalize_ExactlyEightAccepted(t *testing.T) {
	if _, err := Normalize([]int{1, 2, 3, 4, 5, 6, 7, 8}, 1, 10); err != nil {
		t.Fatalf("Normalize() error = %v, want nil for 8 nums", err)
	}
}

func TestNormalize_NineRejected(t *testing.T) {
	if _, err := Normalize([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for 9 nums")
	}
}

func TestNormalize_OutOfRangeNum(t *testing.T) {
	if _, err := Normalize([]int{0, 2, 3, 4}, 1, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for num 0")
	}
	if _, err := Normalize([]int{1, 2, 3, 21}, 1, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for num 21")
	}
}

func TestNormalize_ChanceOutOfRange(t *testing.T) {
	if _, err := Normalize([]int{1, 2, 3, 4}, 0, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for chance 0")
	}
	if _, err := Normalize([]int{1, 2, 3, 4}, 6, 10); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for chance 6")
	}
}

func TestNormalize_AmountZeroRejected(t *testing.T) {
	if _, err := Normalize([]int{1, 2, 3, 4}, 1, 0); err == nil {
		t.Fatal("Normalize() error = nil, want BadRequest for amount 0")
	}
}

func TestChoiceKey_Format(t *testing.T) {
	got := choiceKey([]int{3, 7, 11, 19}, 2)
	want := "3-7-11-19#2"
	if got != want {
		t.Errorf("choiceKey() = %q, want %q", got, want)
	}
}
