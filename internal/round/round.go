// Package round implements the round-time engine (RTE): a pure function
// of wall-clock time and the current config.TimingParams, in the same
// spirit as the teacher's round bookkeeping in manager.go (round IDs and
// a betting/running/crashed state machine) but reduced to arithmetic
// over time.Time, with no in-process authoritative state of its own.
package round

import (
	"math"
	"time"

	"ddj/internal/config"
)

// Info is the RTE snapshot for a single round.
type Info struct {
	RoundID        int64
	StartMs        int64
	EndMs          int64
	CloseAtMs      int64
	BetsOpen       bool
	SecondsLeft    int64
	SecondsToClose int64
}

// Snapshot computes the round info covering wall-clock instant now.
func Snapshot(p config.TimingParams, now time.Time) Info {
	return infoAt(p, now, roundIDAt(p, now))
}

// ForRound computes the round info for a specific roundID, independent
// of which round wall-clock time now currently falls in.
func ForRound(p config.TimingParams, now time.Time, roundID int64) Info {
	return infoAt(p, now, roundID)
}

func roundIDAt(p config.TimingParams, now time.Time) int64 {
	roundMs := p.RoundSeconds * 1000
	nowMs := now.UnixMilli()
	return floorDiv(nowMs-p.AnchorMs, roundMs)
}

func infoAt(p config.TimingParams, now time.Time, roundID int64) Info {
	roundMs := p.RoundSeconds * 1000
	start := p.AnchorMs + roundID*roundMs
	end := start + roundMs
	closeAt := end - p.CloseBetsAt*1000
	nowMs := now.UnixMilli()

	return Info{
		RoundID:        roundID,
		StartMs:        start,
		EndMs:          end,
		CloseAtMs:      closeAt,
		BetsOpen:       nowMs < closeAt,
		SecondsLeft:    ceilSeconds(end - nowMs),
		SecondsToClose: ceilSeconds(closeAt - nowMs),
	}
}

func ceilSeconds(remainingMs int64) int64 {
	if remainingMs <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(remainingMs) / 1000.0))
}

// floorDiv is integer division that rounds toward negative infinity,
// matching spec.md's floor((now - anchorMs) / roundMs) for times before
// the anchor.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
