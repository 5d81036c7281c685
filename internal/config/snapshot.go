package config

import (
	"sync/atomic"
	"time"
)

// TimingSnapshot is a single atomically-replaced holder for the RTE's
// mutable parameters. Every request reads one snapshot via Load; admin
// updates replace the whole struct in one Store, so readers never see a
// mix of old and new fields.
type TimingSnapshot struct {
	ptr atomic.Pointer[TimingParams]
}

// NewTimingSnapshot seeds the snapshot with initial values.
func NewTimingSnapshot(p TimingParams) *TimingSnapshot {
	s := &TimingSnapshot{}
	s.ptr.Store(&p)
	return s
}

// Load returns the current timing parameters.
func (s *TimingSnapshot) Load() TimingParams {
	return *s.ptr.Load()
}

// Update applies u against the current snapshot and atomically installs
// the guardrailed result, returning it.
func (s *TimingSnapshot) Update(u TimingUpdate, now time.Time) TimingParams {
	next := s.Load().Apply(u, now)
	s.ptr.Store(&next)
	return next
}
