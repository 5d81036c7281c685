package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
)

// InsertBet records a new wager inside tx. Settled/payout/category start
// at their zero values per spec.md §3.
func (s *Store) InsertBet(ctx context.Context, tx pgx.Tx, b *Bet) error {
	b.ID = uuid.New()
	err := tx.QueryRow(ctx, `
		INSERT INTO bets (id, player_id, round_id, nums, chance, amount, payout, settled)
		VALUES ($1, $2, $3, $4, $5, $6, 0, false)
		RETURNING created_at
	`, b.ID, b.PlayerID, b.RoundID, b.Nums, b.Chance, b.Amount).Scan(&b.CreatedAt)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "insert bet", err)
	}
	return nil
}

// LoadUnsettledBetsForUpdate loads every unsettled bet for roundID,
// ordered by id ascending, with a row lock held for the transaction's
// duration — spec.md §4.4 step 3.
func (s *Store) LoadUnsettledBetsForUpdate(ctx context.Context, tx pgx.Tx, roundID int64) ([]Bet, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, player_id, round_id, nums, chance, amount, payout, category, settled, created_at
		FROM bets
		WHERE round_id = $1 AND settled = false
		ORDER BY id ASC
		FOR UPDATE
	`, roundID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load unsettled bets", err)
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		var nums []int16
		var cat *string
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.RoundID, &nums, &b.Chance, &b.Amount, &b.Payout, &cat, &b.Settled, &b.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scan bet row", err)
		}
		b.Nums = nums
		if cat != nil {
			c := Category(*cat)
			b.Category = &c
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SettleBet writes the final payout/category/settled fields for a bet
// that was loaded (and locked) by LoadUnsettledBetsForUpdate.
func (s *Store) SettleBet(ctx context.Context, tx pgx.Tx, betID uuid.UUID, payout int64, category *Category) error {
	var catStr *string
	if category != nil {
		c := string(*category)
		catStr = &c
	}
	_, err := tx.Exec(ctx, `
		UPDATE bets SET settled = true, payout = $1, category = $2 WHERE id = $3
	`, payout, catStr, betID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "settle bet", err)
	}
	return nil
}

// ListBetsForPlayer is a read helper backing admin/debug surfaces; not
// part of the external contract but handy for tests and operators.
func (s *Store) ListBetsForPlayer(ctx context.Context, q Querier, playerID uuid.UUID, limit int) ([]Bet, error) {
	rows, err := q.Query(ctx, `
		SELECT id, player_id, round_id, nums, chance, amount, payout, category, settled, created_at
		FROM bets WHERE player_id = $1 ORDER BY id DESC LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list bets", err)
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		var cat *string
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.RoundID, &b.Nums, &b.Chance, &b.Amount, &b.Payout, &cat, &b.Settled, &b.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scan bet row", err)
		}
		if cat != nil {
			c := Category(*cat)
			b.Category = &c
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
