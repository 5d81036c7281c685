package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
)

// AcquireRoundSettlementLock serializes concurrent settle(roundId) calls
// for the same round. round_results has no row yet on the first call, so
// a row-level FOR UPDATE can't be used to establish exclusivity the way
// LockPlayerForUpdate does; a transaction-scoped Postgres advisory lock
// fills the same role and is released automatically at commit/rollback.
func (s *Store) AcquireRoundSettlementLock(ctx context.Context, tx pgx.Tx, roundID int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roundID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "acquire round settlement lock", err)
	}
	return nil
}

// GetRoundResult returns the round's result row, or ok=false if the
// round has not been settled yet. Call this only after
// AcquireRoundSettlementLock inside the same transaction.
func (s *Store) GetRoundResult(ctx context.Context, tx pgx.Tx, roundID int64) (*RoundResult, bool, error) {
	var rr RoundResult
	err := tx.QueryRow(ctx, `
		SELECT round_id, main, chance, settled_at FROM round_results WHERE round_id = $1
	`, roundID).Scan(&rr.RoundID, &rr.Main, &rr.Chance, &rr.SettledAt)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.Internal, "load round result", err)
	}
	return &rr, true, nil
}

// InsertRoundResult records the outcome exactly once per roundID.
func (s *Store) InsertRoundResult(ctx context.Context, tx pgx.Tx, rr RoundResult) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO round_results (round_id, main, chance, settled_at) VALUES ($1, $2, $3, $4)
	`, rr.RoundID, rr.Main, rr.Chance, rr.SettledAt)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "insert round result", err)
	}
	return nil
}

// LockBank loads the single game_bank row under FOR UPDATE, creating it
// on first use so callers never have to special-case an empty table.
func (s *Store) LockBank(ctx context.Context, tx pgx.Tx) (*Bank, error) {
	var b Bank
	_, err := tx.Exec(ctx, `
		INSERT INTO game_bank (id, carry_dos, admin_balance_dos) VALUES (1, 0, 0)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "seed game bank", err)
	}

	err = tx.QueryRow(ctx, `
		SELECT carry_dos, admin_balance_dos FROM game_bank WHERE id = 1 FOR UPDATE
	`).Scan(&b.CarryDOS, &b.AdminBalanceDOS)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lock game bank", err)
	}
	return &b, nil
}

// SaveBank writes back the bank balances.
func (s *Store) SaveBank(ctx context.Context, tx pgx.Tx, b Bank) error {
	_, err := tx.Exec(ctx, `
		UPDATE game_bank SET carry_dos = $1, admin_balance_dos = $2 WHERE id = 1
	`, b.CarryDOS, b.AdminBalanceDOS)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "save game bank", err)
	}
	return nil
}

// AppendAdminLedger records an admin_ledger audit row (ADMIN_TAKE per
// round; carry itself lives in game_bank, not as an event stream, per
// SPEC_FULL.md §9).
func (s *Store) AppendAdminLedger(ctx context.Context, tx pgx.Tx, kind AdminLedgerKind, amount int64, meta map[string]interface{}) error {
	metaJSON, err := marshalMeta(meta)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "marshal admin ledger meta", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO admin_ledger (kind, amount, meta) VALUES ($1, $2, $3)
	`, kind, amount, metaJSON)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "append admin ledger", err)
	}
	return nil
}

// now is a package-level clock hook. No function in this package reads
// it; settlement takes its timestamp from time.Now directly.
var now = time.Now
