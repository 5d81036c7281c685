package round

import (
	"testing"
	"time"

	"ddj/internal/config"
)

func testParams() config.TimingParams {
	return config.TimingParams{
		RoundSeconds: 300,
		CloseBetsAt:  30,
		AnchorMs:     1_700_000_000_000,
	}
}

func TestSnapshot_RoundMonotonic(t *testing.T) {
	p := testParams()
	t1 := time.UnixMilli(p.AnchorMs + 1000)
	t2 := time.UnixMilli(p.AnchorMs + 600_000)

	i1 := Snapshot(p, t1)
	i2 := Snapshot(p, t2)

	if i2.RoundID < i1.RoundID {
		t.Errorf("RoundID not monotonic: t1=%d t2=%d", i1.RoundID, i2.RoundID)
	}
}

func TestSnapshot_BetsOpenTransition(t *testing.T) {
	p := testParams()
	closeAt := p.AnchorMs + p.RoundSeconds*1000 - p.CloseBetsAt*1000

	before := Snapshot(p, time.UnixMilli(closeAt-1))
	atClose := Snapshot(p, time.UnixMilli(closeAt))
	after := Snapshot(p, time.UnixMilli(closeAt+1))

	if !before.BetsOpen {
		t.Error("BetsOpen should be true 1ms before closeAt")
	}
	if atClose.BetsOpen {
		t.Error("BetsOpen should be false exactly at closeAt (tie-break to closed)")
	}
	if after.BetsOpen {
		t.Error("BetsOpen should be false after closeAt")
	}
}

func TestForRound_MatchesSnapshot(t *testing.T) {
	p := testParams()
	now := time.UnixMilli(p.AnchorMs + 12_345_678)

	snap := Snapshot(p, now)
	byID := ForRound(p, now, snap.RoundID)

	if snap != byID {
		t.Errorf("ForRound(snap.RoundID) = %+v, want %+v", byID, snap)
	}
}

func TestSnapshot_SecondsLeftNeverNegative(t *testing.T) {
	p := testParams()
	end := p.AnchorMs + p.RoundSeconds*1000

	afterEnd := Snapshot(p, time.UnixMilli(end+5000))
	if afterEnd.SecondsLeft < 0 {
		t.Errorf("SecondsLeft = %d, want >= 0", afterEnd.SecondsLeft)
	}
}

func TestApply_Guardrails(t *testing.T) {
	p := config.TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1_700_000_000_000}
	now := time.UnixMilli(1_700_000_500_000)

	tooSmall := int64(5)
	got := p.Apply(config.TimingUpdate{RoundSeconds: &tooSmall}, now)
	if got.RoundSeconds != 30 {
		t.Errorf("RoundSeconds floor not applied: got %d, want 30", got.RoundSeconds)
	}

	closeTooBig := int64(400)
	roundSeconds := int64(300)
	got = p.Apply(config.TimingUpdate{RoundSeconds: &roundSeconds, CloseBetsAt: &closeTooBig}, now)
	if got.CloseBetsAt != got.RoundSeconds-1 {
		t.Errorf("CloseBetsAt not clamped: got %d, want %d", got.CloseBetsAt, got.RoundSeconds-1)
	}

	badAnchor := int64(-1)
	got = p.Apply(config.TimingUpdate{AnchorMs: &badAnchor}, now)
	if got.AnchorMs != now.UnixMilli() {
		t.Errorf("invalid anchor not reset to now: got %d, want %d", got.AnchorMs, now.UnixMilli())
	}
}
