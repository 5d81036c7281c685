package config

import (
	"testing"
	"time"
)

func TestApply_ClampsRoundSecondsFloor(t *testing.T) {
	p := TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1}
	short := int64(5)

	next := p.Apply(TimingUpdate{RoundSeconds: &short}, time.Now())
	if next.RoundSeconds != minRoundSeconds {
		t.Errorf("RoundSeconds = %d, want floor %d", next.RoundSeconds, minRoundSeconds)
	}
}

func TestApply_ClampsCloseBetsAtBelowRoundSeconds(t *testing.T) {
	p := TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1}
	tooLarge := int64(300)

	next := p.Apply(TimingUpdate{CloseBetsAt: &tooLarge}, time.Now())
	if next.CloseBetsAt != next.RoundSeconds-1 {
		t.Errorf("CloseBetsAt = %d, want %d", next.CloseBetsAt, next.RoundSeconds-1)
	}
}

func TestApply_RejectsNonPositiveAnchor(t *testing.T) {
	p := TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1}
	bad := int64(-1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	next := p.Apply(TimingUpdate{AnchorMs: &bad}, now)
	if next.AnchorMs != now.UnixMilli() {
		t.Errorf("AnchorMs = %d, want fallback to now (%d)", next.AnchorMs, now.UnixMilli())
	}
}

func TestApply_LeavesUnspecifiedFieldsUnchanged(t *testing.T) {
	p := TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1700000000000}

	next := p.Apply(TimingUpdate{}, time.Now())
	if next != p {
		t.Errorf("Apply with no updates changed params: got %+v, want %+v", next, p)
	}
}

func TestTimingSnapshot_UpdateIsVisibleToLoad(t *testing.T) {
	s := NewTimingSnapshot(TimingParams{RoundSeconds: 300, CloseBetsAt: 30, AnchorMs: 1})
	newRound := int64(120)

	s.Update(TimingUpdate{RoundSeconds: &newRound}, time.Now())

	if got := s.Load().RoundSeconds; got != 120 {
		t.Errorf("Load().RoundSeconds = %d, want 120", got)
	}
}
