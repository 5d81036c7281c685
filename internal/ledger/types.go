// Package ledger is the Ledger & Wallet Store (LWS): the persistent
// tables and the strict invariants around them (players, dos_ledger,
// gift_codes, bets, round_results, admin_ledger, game_bank), plus the
// gift-code redemption transaction.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStatus is the lifecycle state of a player account.
type PlayerStatus string

const (
	StatusActive    PlayerStatus = "ACTIVE"
	StatusSuspended PlayerStatus = "SUSPENDED"
)

// LedgerKind enumerates the append-only dos_ledger entry kinds.
type LedgerKind string

const (
	KindBonusSignup LedgerKind = "BONUS_SIGNUP"
	KindRedeem      LedgerKind = "REDEEM"
	KindBet         LedgerKind = "BET"
	KindWin         LedgerKind = "WIN"
	KindAdminAdd    LedgerKind = "ADMIN_ADD"
	KindAdminSet    LedgerKind = "ADMIN_SET"
	KindAdminStatus LedgerKind = "ADMIN_STATUS"
)

// AdminLedgerKind enumerates admin_ledger entry kinds.
type AdminLedgerKind string

const (
	AdminKindAdminTake AdminLedgerKind = "ADMIN_TAKE"
)

// GiftCodeStatus is the lifecycle state of a gift code.
type GiftCodeStatus string

const (
	GiftCodeActive    GiftCodeStatus = "ACTIVE"
	GiftCodeRedeemed  GiftCodeStatus = "REDEEMED"
	GiftCodeDisabled  GiftCodeStatus = "DISABLED"
)

// Category is a settled bet's prize tier. A losing bet has no category:
// Bet.Category is nil and the bets.category column is NULL.
type Category string

const (
	Cat4Plus1 Category = "4+1"
	Cat4Plus0 Category = "4+0"
	Cat3Plus1 Category = "3+1"
	Cat3Plus0 Category = "3+0"
	Cat2Plus1 Category = "2+1"
	Cat2Plus0 Category = "2+0"
	Cat1Plus1 Category = "1+1"
)

// CategoryWeights is the fixed allocation of winPool across categories,
// resolved per SPEC_FULL.md §9 as the 7-category set.
var CategoryWeights = map[Category]float64{
	Cat4Plus1: 0.35,
	Cat4Plus0: 0.15,
	Cat3Plus1: 0.18,
	Cat3Plus0: 0.10,
	Cat2Plus1: 0.10,
	Cat2Plus0: 0.07,
	Cat1Plus1: 0.05,
}

// Player is a player account.
type Player struct {
	ID        uuid.UUID
	Username  string
	Balance   int64
	Status    PlayerStatus
	CreatedAt time.Time
}

// LedgerEntry is one append-only dos_ledger row.
type LedgerEntry struct {
	ID        int64
	PlayerID  uuid.UUID
	Kind      LedgerKind
	Amount    int64
	Meta      map[string]interface{}
	CreatedAt time.Time
}

// GiftCode is a redeemable code row. Only CodeHash is persisted; the
// plaintext code is returned once by GenerateCodes and never stored.
type GiftCode struct {
	ID         uuid.UUID
	CodeHash   string
	Value      int64
	Status     GiftCodeStatus
	ExpiresAt  *time.Time
	RedeemedBy *uuid.UUID
	RedeemedAt *time.Time
}

// Bet is a single wager row.
type Bet struct {
	ID        uuid.UUID
	PlayerID  uuid.UUID
	RoundID   int64
	Nums      []int16
	Chance    int16
	Amount    int64
	Payout    int64
	Category  *Category
	Settled   bool
	CreatedAt time.Time
}

// RoundResult is the single row written exactly once per settled round.
type RoundResult struct {
	RoundID   int64
	Main      []int16
	Chance    int16
	SettledAt time.Time
}

// AdminLedgerEntry is an admin_ledger row (audit trail for admin take).
type AdminLedgerEntry struct {
	ID        int64
	Kind      AdminLedgerKind
	Amount    int64
	Meta      map[string]interface{}
	CreatedAt time.Time
}

// Bank is the single-row game_bank table: the running carry balance and
// cumulative admin balance, resolving the carry Open Question per
// SPEC_FULL.md §9.
type Bank struct {
	CarryDOS        int64
	AdminBalanceDOS int64
}
