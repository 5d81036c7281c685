// Package config loads process configuration from the environment and
// exposes the mutable round-timing parameters behind an atomically
// swapped snapshot, per the Design Notes' guidance against torn reads of
// individually-updated fields.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Env holds every environment-driven setting spec.md §6 lists.
type Env struct {
	Port           int    `env:"PORT" envDefault:"3000"`
	AdminKey       string `env:"ADMIN_KEY"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	SecretSeed     string `env:"SECRET_SEED"`
	SignupBonusDOS int64  `env:"SIGNUP_BONUS_DOS" envDefault:"50"`
	RoundSeconds   int64  `env:"ROUND_SECONDS" envDefault:"300"`
	CloseBetsAt    int64  `env:"CLOSE_BETS_AT" envDefault:"30"`
	AnchorMs       int64  `env:"ANCHOR_MS" envDefault:"1704067200000"` // 2024-01-01T00:00:00Z
}

// Load parses the process environment into an Env.
func Load() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TimingParams are the three RTE tuning knobs admins may update live.
type TimingParams struct {
	RoundSeconds int64
	CloseBetsAt  int64
	AnchorMs     int64
}

// TimingUpdate carries the optional fields of an admin config PUT.
type TimingUpdate struct {
	RoundSeconds *int64
	CloseBetsAt  *int64
	AnchorMs     *int64
}

const minRoundSeconds = 30

// Apply returns a new, guardrailed TimingParams built from p and the
// requested changes in u, per spec.md §4.1's updateConfig guardrails.
func (p TimingParams) Apply(u TimingUpdate, now time.Time) TimingParams {
	next := p

	if u.RoundSeconds != nil {
		next.RoundSeconds = *u.RoundSeconds
	}
	if next.RoundSeconds < minRoundSeconds {
		next.RoundSeconds = minRoundSeconds
	}

	if u.CloseBetsAt != nil {
		next.CloseBetsAt = *u.CloseBetsAt
	}
	if next.CloseBetsAt < 1 {
		next.CloseBetsAt = 1
	}
	if next.CloseBetsAt >= next.RoundSeconds {
		next.CloseBetsAt = next.RoundSeconds - 1
	}

	if u.AnchorMs != nil {
		next.AnchorMs = *u.AnchorMs
	}
	if !validAnchor(next.AnchorMs) {
		next.AnchorMs = now.UnixMilli()
	}

	return next
}

func validAnchor(ms int64) bool {
	// Go's int64 has no NaN/Inf; the closest analogue to the source
	// spec's "non-finite anchor" guard is rejecting a non-positive
	// timestamp, which can't name a real wall-clock instant here.
	return ms > 0
}
