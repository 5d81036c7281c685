package ledger

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ddj/internal/apperr"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every Store
// method works identically whether called outside or inside a
// transaction — the same shape the pack's bet/resolution services use
// (tx.QueryRow(...FOR UPDATE...) inside a *sqlx.Tx, a *pgxpool.Pool.Pool
// outside one).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Store is the LWS: a thin repository layer over a pgx connection pool.
type Store struct {
	Pool *pgxpool.Pool
}

// New wraps an already-connected pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic — the scoped-resource pattern Design Notes
// §9 asks for in place of exception-driven rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func marshalMeta(meta map[string]interface{}) ([]byte, error) {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return json.Marshal(meta)
}

// --- players -----------------------------------------------------------

// CreatePlayer inserts a new player row. Returns Conflict if the
// username is already taken.
func (s *Store) CreatePlayer(ctx context.Context, q Querier, username string) (*Player, error) {
	p := &Player{ID: uuid.New(), Username: username, Status: StatusActive}
	err := q.QueryRow(ctx, `
		INSERT INTO players (id, username, balance, status)
		VALUES ($1, $2, 0, $3)
		RETURNING created_at
	`, p.ID, p.Username, p.Status).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.New(apperr.Conflict, "username already taken")
		}
		return nil, apperr.Wrap(apperr.Internal, "create player", err)
	}
	return p, nil
}

// GetPlayer loads a player without locking.
func (s *Store) GetPlayer(ctx context.Context, q Querier, id uuid.UUID) (*Player, error) {
	return s.scanPlayer(q.QueryRow(ctx, `
		SELECT id, username, balance, status, created_at FROM players WHERE id = $1
	`, id))
}

// LockPlayerForUpdate loads a player row under FOR UPDATE, for use
// inside a transaction ahead of a balance mutation.
func (s *Store) LockPlayerForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Player, error) {
	p, err := s.scanPlayer(tx.QueryRow(ctx, `
		SELECT id, username, balance, status, created_at FROM players WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) scanPlayer(row pgx.Row) (*Player, error) {
	p := &Player{}
	err := row.Scan(&p.ID, &p.Username, &p.Balance, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.New(apperr.NotFound, "player not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "load player", err)
	}
	return p, nil
}

// SetPlayerBalance writes a player's new balance. Must be called inside
// the same transaction that locked the row.
func (s *Store) SetPlayerBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	_, err := tx.Exec(ctx, `UPDATE players SET balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "update player balance", err)
	}
	return nil
}

// SetPlayerStatus updates a player's status (admin operation).
func (s *Store) SetPlayerStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status PlayerStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE players SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "update player status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "player not found")
	}
	return nil
}

// ListLeaderboard returns active players ordered by balance descending.
func (s *Store) ListLeaderboard(ctx context.Context, q Querier, limit int) ([]Player, error) {
	rows, err := q.Query(ctx, `
		SELECT id, username, balance, status, created_at
		FROM players
		WHERE status = $1
		ORDER BY balance DESC
		LIMIT $2
	`, StatusActive, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list leaderboard", err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Balance, &p.Status, &p.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scan leaderboard row", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- ledger --------------------------------------------------------------

// AppendLedger inserts one append-only dos_ledger row inside tx.
func (s *Store) AppendLedger(ctx context.Context, tx pgx.Tx, playerID uuid.UUID, kind LedgerKind, amount int64, meta map[string]interface{}) (int64, error) {
	metaJSON, err := marshalMeta(meta)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "marshal ledger meta", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO dos_ledger (player_id, kind, amount, meta)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, playerID, kind, amount, metaJSON).Scan(&id)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "append ledger entry", err)
	}
	return id, nil
}

// ListLedger returns a player's ledger entries newest-first.
func (s *Store) ListLedger(ctx context.Context, q Querier, playerID uuid.UUID, limit int) ([]LedgerEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, player_id, kind, amount, meta, created_at
		FROM dos_ledger
		WHERE player_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list ledger", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Kind, &e.Amount, &metaJSON, &e.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scan ledger row", err)
		}
		_ = json.Unmarshal(metaJSON, &e.Meta)
		out = append(out, e)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	type pgErr interface{ SQLState() string }
	if pe, ok := err.(pgErr); ok {
		return pe.SQLState() == "23505"
	}
	return false
}
