package ledger

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ddj/internal/apperr"
)

var giftCodeRE = regexp.MustCompile(`^[` + giftCodeAlphabet + `]{12}$`)

// ValidGiftCodeFormat checks the surface format spec.md §4.5 requires
// before a hash lookup is even attempted: 12 uppercase alphanumerics
// drawn from giftCodeAlphabet.
func ValidGiftCodeFormat(code string) bool {
	if len(code) != giftCodeLength {
		return false
	}
	return giftCodeRE.MatchString(code)
}

// RedeemResult is returned on a successful redemption.
type RedeemResult struct {
	BalanceAfter int64
	Value        int64
}

// Redeem runs the gift-code redemption transaction: lock player, lock
// code by hash, validate both, credit balance, mark code REDEEMED,
// append one REDEEM ledger entry.
func (s *Store) Redeem(ctx context.Context, playerID uuid.UUID, code string, secretSeed string, now time.Time) (*RedeemResult, error) {
	if !ValidGiftCodeFormat(code) {
		return nil, apperr.New(apperr.BadRequest, "malformed gift code")
	}
	if len(secretSeed) < 16 {
		return nil, apperr.New(apperr.ConfigError, "SECRET_SEED missing or too short")
	}
	hash := HashGiftCode(secretSeed, code)

	var out RedeemResult
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		player, err := s.LockPlayerForUpdate(ctx, tx, playerID)
		if err != nil {
			return err
		}
		if player.Status != StatusActive {
			return apperr.New(apperr.Forbidden, "player is not active")
		}

		gc, err := s.LockGiftCodeByHash(ctx, tx, hash)
		if err != nil {
			return err
		}
		if gc.Status != GiftCodeActive {
			return apperr.New(apperr.Conflict, "gift code already used")
		}
		if gc.ExpiresAt != nil && now.After(*gc.ExpiresAt) {
			return apperr.New(apperr.Conflict, "gift code expired")
		}

		newBalance := player.Balance + gc.Value
		if err := s.SetPlayerBalance(ctx, tx, player.ID, newBalance); err != nil {
			return err
		}
		if err := s.RedeemGiftCode(ctx, tx, gc.ID, player.ID, now); err != nil {
			return err
		}
		if _, err := s.AppendLedger(ctx, tx, player.ID, KindRedeem, gc.Value, map[string]interface{}{
			"giftCodeId": gc.ID.String(),
		}); err != nil {
			return err
		}

		out = RedeemResult{BalanceAfter: newBalance, Value: gc.Value}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
