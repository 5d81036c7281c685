// Package betting implements the bet pipeline: validating a wager,
// checking the round is still open, and moving DOS out of a player's
// balance into a bet row inside one transaction. It follows the shape
// of BetService.PlaceBet from the pack's prediction-market bet service —
// lock wallet, validate state, persist, append one audit ledger row,
// commit — generalized to this game's number-pick rules.
package betting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
	"ddj/internal/config"
	"ddj/internal/ledger"
	"ddj/internal/round"
)

const (
	minNums = 4
	maxNums = 8
	numMin  = 1
	numMax  = 20

	chanceMin = 1
	chanceMax = 5
)

// Request is the raw, not-yet-validated shape of a placeBet call.
type Request struct {
	PlayerID uuid.UUID
	Nums     []int
	Chance   int
	Amount   int64
}

// Result is returned on a successful bet placement.
type Result struct {
	Bet          ledger.Bet
	BalanceAfter int64
}

// ConflictInfo accompanies a "bets closed" Conflict error so the caller
// can surface roundId/secondsToClose without parsing the error string.
type ConflictInfo struct {
	RoundID        int64
	SecondsToClose int64
}

// Service wires the ledger store and the process-wide timing snapshot
// together to run placeBet per spec.md §4.3.
type Service struct {
	Store  *ledger.Store
	Timing *config.TimingSnapshot
}

func New(store *ledger.Store, timing *config.TimingSnapshot) *Service {
	return &Service{Store: store, Timing: timing}
}

// Normalize validates and dedups/sorts nums, and range-checks chance and
// amount, independent of any round or balance state.
func Normalize(numsIn []int, chance int, amount int64) ([]int, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.BadRequest, "amount must be a positive integer")
	}

	seen := make(map[int]bool, len(numsIn))
	nums := make([]int, 0, len(numsIn))
	for _, n := range numsIn {
		if n < numMin || n > numMax {
			return nil, apperr.New(apperr.BadRequest, "nums out of range", "min", numMin, "max", numMax)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	sort.Ints(nums)

	if len(nums) < minNums || len(nums) > maxNums {
		return nil, apperr.New(apperr.BadRequest, "nums length out of range after dedup", "min", minNums, "max", maxNums)
	}
	if chance < chanceMin || chance > chanceMax {
		return nil, apperr.New(apperr.BadRequest, "chance out of range", "min", chanceMin, "max", chanceMax)
	}

	return nums, nil
}

// PlaceBet runs the full pipeline: timing check, transactional balance
// deduction, bet insert, and a single BET ledger entry.
func (s *Service) PlaceBet(ctx context.Context, req Request) (*Result, *ConflictInfo, error) {
	nums, err := Normalize(req.Nums, req.Chance, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	info := round.Snapshot(s.Timing.Load(), now)
	if !info.BetsOpen {
		return nil, &ConflictInfo{RoundID: info.RoundID, SecondsToClose: 0}, apperr.New(apperr.Conflict, "bets closed")
	}

	var out Result
	err = s.Store.WithTx(ctx, func(tx pgx.Tx) error {
		player, err := s.Store.LockPlayerForUpdate(ctx, tx, req.PlayerID)
		if err != nil {
			return err
		}
		if player.Status != ledger.StatusActive {
			return apperr.New(apperr.Forbidden, "player is not active")
		}
		if player.Balance < req.Amount {
			return apperr.New(apperr.Conflict, "insufficient balance")
		}

		newBalance := player.Balance - req.Amount
		if err := s.Store.SetPlayerBalance(ctx, tx, player.ID, newBalance); err != nil {
			return err
		}

		bet := &ledger.Bet{
			PlayerID: player.ID,
			RoundID:  info.RoundID,
			Nums:     toInt16s(nums),
			Chance:   int16(req.Chance),
			Amount:   req.Amount,
		}
		if err := s.Store.InsertBet(ctx, tx, bet); err != nil {
			return err
		}

		choice := choiceKey(nums, req.Chance)
		if _, err := s.Store.AppendLedger(ctx, tx, player.ID, ledger.KindBet, -req.Amount, map[string]interface{}{
			"betId":   bet.ID.String(),
			"roundId": info.RoundID,
			"choice":  choice,
		}); err != nil {
			return err
		}

		out = Result{Bet: *bet, BalanceAfter: newBalance}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, nil, nil
}

func toInt16s(nums []int) []int16 {
	out := make([]int16, len(nums))
	for i, n := range nums {
		out[i] = int16(n)
	}
	return out
}

// choiceKey renders the display key "n1-n2-...#chance" spec.md §4.3
// asks for in the BET ledger entry's meta.
func choiceKey(nums []int, chance int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, "-") + fmt.Sprintf("#%d", chance)
}
