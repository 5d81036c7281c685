package ledger

import "fmt"

// DOSUnit is the number of minor units ("centidos") per whole DOS,
// resolved per SPEC_FULL.md §9: every stored and wire amount is an
// int64 count of minor units. Money as integers throughout — no
// floating point ever enters an accounting path.
const DOSUnit = 100

// FormatDOS renders a minor-unit amount as a human-facing decimal
// string, used only at display boundaries (never for arithmetic).
func FormatDOS(minorUnits int64) string {
	whole := minorUnits / DOSUnit
	frac := minorUnits % DOSUnit
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}

// FloorWeighted computes floor(amount * weight), the one place the
// core's integer accounting accepts a float64 operand, per Design
// Notes §9: category/pot-split weights are the only non-integer
// constants, always applied through an explicit floor.
func FloorWeighted(amount int64, weight float64) int64 {
	return int64(float64(amount) * weight)
}
