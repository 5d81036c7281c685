// Package settlement implements the settlement engine (SE): drawing a
// round's outcome, splitting its pot, classifying and paying every bet,
// and recording the result exactly once. It follows the same
// idempotence-check / atomic-transaction / bulk-update shape as the
// pack's ResolutionService.resolveMarket, adapted from a single
// up/down winner to the pick-numbers category ladder.
package settlement

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
	"ddj/internal/config"
	"ddj/internal/draw"
	"ddj/internal/ledger"
	"ddj/internal/round"
)

const (
	adminTakeWeight = 0.25
	carryBaseWeight = 0.10
	winPoolWeight   = 0.65
)

// categoryOrder is the fixed precedence spec.md §4.4 step 5 specifies:
// the first matching (k, c) pair in this order wins.
var categoryOrder = []struct {
	k   int
	c   int
	cat ledger.Category
}{
	{4, 1, ledger.Cat4Plus1},
	{4, 0, ledger.Cat4Plus0},
	{3, 1, ledger.Cat3Plus1},
	{3, 0, ledger.Cat3Plus0},
	{2, 1, ledger.Cat2Plus1},
	{2, 0, ledger.Cat2Plus0},
	{1, 1, ledger.Cat1Plus1},
}

// Result is returned by Settle, whether this call performed the
// settlement or found it already done.
type Result struct {
	RoundID        int64
	AlreadySettled bool
	Outcome        draw.Outcome
	Pot            int64
	AdminTake      int64
	CarryOut       int64
}

// Service wires the ledger store, timing snapshot, and configured
// secret seed together to run settle(roundId) per spec.md §4.4.
type Service struct {
	Store      *ledger.Store
	Timing     *config.TimingSnapshot
	SecretSeed string
}

func New(store *ledger.Store, timing *config.TimingSnapshot, secretSeed string) *Service {
	return &Service{Store: store, Timing: timing, SecretSeed: secretSeed}
}

// Settle runs settlement for roundID, or currentRoundId-1 if roundID is
// negative.
func (s *Service) Settle(ctx context.Context, roundID int64) (*Result, error) {
	now := time.Now().UTC()
	params := s.Timing.Load()

	if roundID < 0 {
		roundID = round.Snapshot(params, now).RoundID - 1
	}
	if roundID < 0 {
		return nil, apperr.New(apperr.BadRequest, "roundId must be >= 0")
	}

	info := round.ForRound(params, now, roundID)
	if now.UnixMilli() < info.EndMs {
		return nil, apperr.New(apperr.Conflict, "round not ended yet", "secondsLeft", info.SecondsLeft)
	}
	if len(s.SecretSeed) < draw.MinSeedLen {
		return nil, apperr.New(apperr.ConfigError, "SECRET_SEED missing or too short")
	}

	var result Result
	err := s.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.Store.AcquireRoundSettlementLock(ctx, tx, roundID); err != nil {
			return err
		}

		existing, ok, err := s.Store.GetRoundResult(ctx, tx, roundID)
		if err != nil {
			return err
		}
		if ok {
			result = Result{
				RoundID:        roundID,
				AlreadySettled: true,
				Outcome:        resultToOutcome(*existing),
			}
			return nil
		}

		outcome, err := draw.Draw(s.SecretSeed, roundID)
		if err != nil {
			return err
		}

		bets, err := s.Store.LoadUnsettledBetsForUpdate(ctx, tx, roundID)
		if err != nil {
			return err
		}

		var pot int64
		for _, b := range bets {
			pot += b.Amount
		}

		bank, err := s.Store.LockBank(ctx, tx)
		if err != nil {
			return err
		}

		adminTake := ledger.FloorWeighted(pot, adminTakeWeight)
		carryBase := ledger.FloorWeighted(pot, carryBaseWeight)
		winPool := ledger.FloorWeighted(pot, winPoolWeight)
		// potTotal is the allocation base for category pools: this round's
		// win pool plus whatever carried in unallocated from prior rounds.
		potTotal := winPool + bank.CarryDOS
		carry := carryBase + (pot - adminTake - carryBase - winPool)

		byCategory := classify(bets, outcome)

		winnerPayouts := make(map[int]int64, len(bets)) // index into bets -> payout
		winnerCategory := make(map[int]ledger.Category, len(bets))

		for _, entry := range categoryOrder {
			winners := byCategory[entry.cat]
			catPool := ledger.FloorWeighted(potTotal, ledger.CategoryWeights[entry.cat])
			if len(winners) == 0 {
				carry += catPool
				continue
			}

			var stakeSum int64
			for _, idx := range winners {
				stakeSum += bets[idx].Amount
			}

			var paidOut int64
			for _, idx := range winners {
				payout := catPool * bets[idx].Amount / stakeSum
				winnerPayouts[idx] = payout
				winnerCategory[idx] = entry.cat
				paidOut += payout
			}
			carry += catPool - paidOut
		}

		for idx := range bets {
			payout := winnerPayouts[idx]
			var cat *ledger.Category
			if c, ok := winnerCategory[idx]; ok {
				cc := c
				cat = &cc
			}
			if err := s.Store.SettleBet(ctx, tx, bets[idx].ID, payout, cat); err != nil {
				return err
			}
		}

		type playerWin struct {
			total      int64
			categories []string
		}
		perPlayerWin := make(map[string]*playerWin)
		for idx, payout := range winnerPayouts {
			if payout <= 0 {
				continue
			}
			key := bets[idx].PlayerID.String()
			w := perPlayerWin[key]
			if w == nil {
				w = &playerWin{}
				perPlayerWin[key] = w
			}
			w.total += payout
			cat := string(winnerCategory[idx])
			listed := false
			for _, c := range w.categories {
				if c == cat {
					listed = true
					break
				}
			}
			if !listed {
				w.categories = append(w.categories, cat)
			}
		}

		for idx := range bets {
			key := bets[idx].PlayerID.String()
			w, ok := perPlayerWin[key]
			if !ok {
				continue
			}
			delete(perPlayerWin, key) // credit once per player even with multiple winning bets

			player, err := s.Store.LockPlayerForUpdate(ctx, tx, bets[idx].PlayerID)
			if err != nil {
				return err
			}
			if err := s.Store.SetPlayerBalance(ctx, tx, player.ID, player.Balance+w.total); err != nil {
				return err
			}
			meta := map[string]interface{}{"roundId": roundID, "categories": w.categories}
			if len(w.categories) == 1 {
				meta["category"] = w.categories[0]
			}
			if _, err := s.Store.AppendLedger(ctx, tx, player.ID, ledger.KindWin, w.total, meta); err != nil {
				return err
			}
		}

		bank.CarryDOS = carry
		bank.AdminBalanceDOS += adminTake
		if err := s.Store.SaveBank(ctx, tx, *bank); err != nil {
			return err
		}
		if err := s.Store.AppendAdminLedger(ctx, tx, ledger.AdminKindAdminTake, adminTake, map[string]interface{}{
			"roundId": roundID,
		}); err != nil {
			return err
		}

		rr := ledger.RoundResult{
			RoundID:   roundID,
			Main:      toInt16s(outcome.Main[:]),
			Chance:    int16(outcome.Chance),
			SettledAt: now,
		}
		if err := s.Store.InsertRoundResult(ctx, tx, rr); err != nil {
			return err
		}

		result = Result{
			RoundID:   roundID,
			Outcome:   outcome,
			Pot:       pot,
			AdminTake: adminTake,
			CarryOut:  carry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// classify groups bet indices by their winning category, skipping
// losers entirely. k >= 4 is treated as k == 4 per spec.md §4.4 step 5.
func classify(bets []ledger.Bet, outcome draw.Outcome) map[ledger.Category][]int {
	mainSet := make(map[int]bool, len(outcome.Main))
	for _, n := range outcome.Main {
		mainSet[n] = true
	}

	out := make(map[ledger.Category][]int)
	for i, b := range bets {
		k := 0
		for _, n := range b.Nums {
			if mainSet[int(n)] {
				k++
			}
		}
		if k >= 4 {
			k = 4
		}
		c := 0
		if int(b.Chance) == outcome.Chance {
			c = 1
		}

		for _, entry := range categoryOrder {
			if entry.k == k && entry.c == c {
				out[entry.cat] = append(out[entry.cat], i)
				break
			}
		}
	}
	return out
}

func toInt16s(nums []int) []int16 {
	out := make([]int16, len(nums))
	for i, n := range nums {
		out[i] = int16(n)
	}
	return out
}

func resultToOutcome(rr ledger.RoundResult) draw.Outcome {
	var o draw.Outcome
	for i := 0; i < draw.MainPicks && i < len(rr.Main); i++ {
		o.Main[i] = int(rr.Main[i])
	}
	o.Chance = int(rr.Chance)
	return o
}
