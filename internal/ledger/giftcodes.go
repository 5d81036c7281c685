package ledger

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
)

// giftCodeAlphabet excludes O, 0, I, 1 per spec.md §6's surface format.
const giftCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const giftCodeLength = 12

// GenerateCodes mints n fresh plaintext codes of the given value and
// optional expiry, persisting only their salted hash, and returns the
// plaintext strings for one-time display to the admin caller.
func (s *Store) GenerateCodes(ctx context.Context, tx pgx.Tx, n int, value int64, expiresAt *time.Time, secretSeed string) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := randomGiftCode()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "generate gift code", err)
		}
		hash := HashGiftCode(secretSeed, code)

		_, err = tx.Exec(ctx, `
			INSERT INTO gift_codes (id, code_hash, value, status, expires_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), hash, value, GiftCodeActive, expiresAt)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "insert gift code", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func randomGiftCode() (string, error) {
	out := make([]byte, giftCodeLength)
	alphabetLen := big.NewInt(int64(len(giftCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		out[i] = giftCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}

// HashGiftCode computes the salted SHA-256 digest stored as code_hash,
// per spec.md §4.5: SHA-256("DDJ|" || SECRET_SEED || "|" || code).
func HashGiftCode(secretSeed, code string) string {
	return hashWithSeed(secretSeed, code)
}

// LockGiftCodeByHash loads a gift code row under FOR UPDATE.
func (s *Store) LockGiftCodeByHash(ctx context.Context, tx pgx.Tx, hash string) (*GiftCode, error) {
	var gc GiftCode
	err := tx.QueryRow(ctx, `
		SELECT id, code_hash, value, status, expires_at, redeemed_by, redeemed_at
		FROM gift_codes WHERE code_hash = $1 FOR UPDATE
	`, hash).Scan(&gc.ID, &gc.CodeHash, &gc.Value, &gc.Status, &gc.ExpiresAt, &gc.RedeemedBy, &gc.RedeemedAt)
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "gift code not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load gift code", err)
	}
	return &gc, nil
}

// RedeemGiftCode marks a gift code REDEEMED by playerID.
func (s *Store) RedeemGiftCode(ctx context.Context, tx pgx.Tx, id uuid.UUID, playerID uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE gift_codes SET status = $1, redeemed_by = $2, redeemed_at = $3 WHERE id = $4
	`, GiftCodeRedeemed, playerID, at, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "redeem gift code", err)
	}
	return nil
}
