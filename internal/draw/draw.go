// Package draw implements the deterministic draw (DD): a pure function
// from (seed, roundId) to a "pick 4 of 20 + chance" outcome. It keeps the
// teacher's HMAC-SHA256 construction from provably_fair.go (same
// hmac.New(sha256.New, seed) call, same crypto/rand seed generation and
// SHA-256 commitment helpers) but replaces the single-float mapping with
// an xorshift32 stream so it can draw several independent values per
// round, per spec.md §4.2.
package draw

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"ddj/internal/apperr"
)

const (
	MinSeedLen  = 16
	MainPoolMax = 20
	MainPicks   = 4
	ChanceMax   = 5

	// fixedNonzeroState substitutes for a zero-valued xorshift32 seed,
	// which would otherwise fix the generator at zero forever.
	fixedNonzeroState uint32 = 0x9E3779B9
)

// Outcome is the result of a single round's draw.
type Outcome struct {
	Main   [MainPicks]int `json:"main"`
	Chance int            `json:"chance"`
}

// Draw computes the deterministic outcome for roundID under seed.
// Returns a ConfigError-kind *apperr.Error if the seed is missing or
// shorter than MinSeedLen bytes.
func Draw(seed string, roundID int64) (Outcome, error) {
	if len(seed) < MinSeedLen {
		return Outcome{}, apperr.New(apperr.ConfigError, "SECRET_SEED missing or too short")
	}

	h := hmac.New(sha256.New, []byte(seed))
	fmt.Fprintf(h, "ddj:round:%d", roundID)
	sum := h.Sum(nil)

	state := binary.BigEndian.Uint32(sum[:4])
	if state == 0 {
		state = fixedNonzeroState
	}
	stream := &xorshiftStream{state: state}

	main := drawMain(stream)
	chance := 1 + stream.nextInt(ChanceMax)

	return Outcome{Main: main, Chance: chance}, nil
}

func drawMain(stream *xorshiftStream) [MainPicks]int {
	seen := make(map[int]bool, MainPicks)
	var out [MainPicks]int
	i := 0
	for i < MainPicks {
		n := 1 + stream.nextInt(MainPoolMax)
		if seen[n] {
			continue
		}
		seen[n] = true
		out[i] = n
		i++
	}
	sort.Ints(out[:])
	return out
}

// xorshiftStream produces a stream of uniform floats in [0,1) from a
// 32-bit xorshift generator with the fixed 13/17/5 shift constants
// spec.md §4.2 mandates for cross-implementation compatibility.
type xorshiftStream struct {
	state uint32
}

func (x *xorshiftStream) next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

func (x *xorshiftStream) nextFloat() float64 {
	return float64(x.next()) / float64(1<<32)
}

// nextInt draws a uniform integer in [0, n) by scaling the next float
// from the stream by n and truncating.
func (x *xorshiftStream) nextInt(n int) int {
	v := int(x.nextFloat() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// GenerateSeed creates a cryptographically secure random 32-byte seed,
// hex-encoded — kept from the teacher's GenerateSeed in provably_fair.go.
// No code outside this package's tests calls it.
func GenerateSeed() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// HashCommitment returns the SHA-256 hex digest of seed — kept from the
// teacher's HashCommitment in provably_fair.go. No code outside this
// package's tests calls it; no endpoint publishes a round commitment.
func HashCommitment(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
