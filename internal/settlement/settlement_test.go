package settlement

import (
	"testing"

	"github.com/google/uuid"

	"ddj/internal/draw"
	"ddj/internal/ledger"
)

func TestClassify_SplitExample(t *testing.T) {
	// spec.md §8 scenario 5: A wins (4,chance-match), B wins (3,0), C loses.
	outcome := draw.Outcome{Main: [4]int{3, 7, 11, 19}, Chance: 2}

	a := ledger.Bet{PlayerID: uuid.New(), Nums: []int16{3, 7, 11, 19}, Chance: 2, Amount: 10}
	b := ledger.Bet{PlayerID: uuid.New(), Nums: []int16{3, 7, 11, 5}, Chance: 4, Amount: 20}
	c := ledger.Bet{PlayerID: uuid.New(), Nums: []int16{1, 2, 4, 6}, Chance: 1, Amount: 10}

	bySlot := classify([]ledger.Bet{a, b, c}, outcome)

	if idxs := bySlot[ledger.Cat4Plus1]; len(idxs) != 1 || idxs[0] != 0 {
		t.Fatalf("4+1 winners = %v, want [0]", idxs)
	}
	if idxs := bySlot[ledger.Cat3Plus0]; len(idxs) != 1 || idxs[0] != 1 {
		t.Fatalf("3+0 winners = %v, want [1]", idxs)
	}
	for cat, idxs := range bySlot {
		if cat != ledger.Cat4Plus1 && cat != ledger.Cat3Plus0 && len(idxs) != 0 {
			t.Fatalf("unexpected winners in category %s: %v", cat, idxs)
		}
	}
}

func TestClassify_KGreaterThanFourTreatedAsFour(t *testing.T) {
	outcome := draw.Outcome{Main: [4]int{1, 2, 3, 4}, Chance: 2}
	bet := ledger.Bet{PlayerID: uuid.New(), Nums: []int16{1, 2, 3, 4, 5, 6}, Chance: 2, Amount: 10}

	bySlot := classify([]ledger.Bet{bet}, outcome)
	if idxs := bySlot[ledger.Cat4Plus1]; len(idxs) != 1 {
		t.Fatalf("expected the 6-pick superset bet to classify as 4+1, got %v", bySlot)
	}
}

func TestPotSplit_MatchesWorkedExample(t *testing.T) {
	pot := int64(40)
	adminTake := ledger.FloorWeighted(pot, adminTakeWeight)
	carryBase := ledger.FloorWeighted(pot, carryBaseWeight)
	winPool := ledger.FloorWeighted(pot, winPoolWeight)

	if adminTake != 10 {
		t.Errorf("adminTake = %d, want 10", adminTake)
	}
	if carryBase != 4 {
		t.Errorf("carryBase = %d, want 4", carryBase)
	}
	if winPool != 26 {
		t.Errorf("winPool = %d, want 26", winPool)
	}
}
