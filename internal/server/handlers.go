package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ddj/internal/apperr"
	"ddj/internal/betting"
	"ddj/internal/cache"
	"ddj/internal/config"
	"ddj/internal/ledger"
	"ddj/internal/round"
)

// writeError renders the apperr-independent fallback error shape.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// statusForKind maps an apperr.Kind to its HTTP status per spec.md §7's
// taxonomy, without ever string-matching the message.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.BadRequest:
		return fiber.StatusBadRequest
	case apperr.Unauthorized:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Conflict:
		return fiber.StatusConflict
	case apperr.TooManyRequests:
		return fiber.StatusTooManyRequests
	case apperr.ConfigError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// handleErr renders err as {error, ...fields} with the mapped status.
// Any error that isn't an *apperr.Error is treated as Internal.
func (s *FiberServer) handleErr(c *fiber.Ctx, err error) error {
	appErr, ok := apperr.As(err)
	if !ok {
		s.log.Error("unhandled error", zap.Error(err))
		return writeError(c, fiber.StatusInternalServerError, "internal error")
	}
	if appErr.Kind == apperr.Internal {
		s.log.Error("internal error", zap.Error(appErr), zap.String("message", appErr.Message))
	}

	body := fiber.Map{"error": appErr.Message}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	return c.Status(statusForKind(appErr.Kind)).JSON(body)
}

// --- GET /api/health -----------------------------------------------------

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":   "ok",
		"database": s.db.Health(),
	}
	if s.cache != nil {
		body["cache"] = s.cache.Health()
	} else {
		body["cache"] = map[string]string{"status": "disabled"}
	}
	return c.JSON(body)
}

// --- GET /api/round --------------------------------------------------------

func (s *FiberServer) roundHandler(c *fiber.Ctx) error {
	params := s.timing.Load()
	info := round.Snapshot(params, time.Now().UTC())
	return c.JSON(fiber.Map{
		"ok":             true,
		"roundId":        info.RoundID,
		"startMs":        info.StartMs,
		"endMs":          info.EndMs,
		"closeAtMs":      info.CloseAtMs,
		"betsOpen":       info.BetsOpen,
		"secondsLeft":    info.SecondsLeft,
		"secondsToClose": info.SecondsToClose,
		"roundSeconds":   params.RoundSeconds,
		"closeBetsAt":    params.CloseBetsAt,
		"anchorMs":       params.AnchorMs,
	})
}

// --- POST /api/player/signup ------------------------------------------------

type signupRequest struct {
	Username string `json:"username"`
}

func (s *FiberServer) signupHandler(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return writeError(c, fiber.StatusBadRequest, "username is required")
	}

	var player *ledger.Player
	err := s.store.WithTx(c.Context(), func(tx pgx.Tx) error {
		p, err := s.store.CreatePlayer(c.Context(), tx, req.Username)
		if err != nil {
			return err
		}
		if s.env.SignupBonusDOS > 0 {
			if err := s.store.SetPlayerBalance(c.Context(), tx, p.ID, s.env.SignupBonusDOS); err != nil {
				return err
			}
			if _, err := s.store.AppendLedger(c.Context(), tx, p.ID, ledger.KindBonusSignup, s.env.SignupBonusDOS, nil); err != nil {
				return err
			}
			p.Balance = s.env.SignupBonusDOS
		}
		player = p
		return nil
	})
	if err != nil {
		return s.handleErr(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":       true,
		"playerId": player.ID,
		"username": player.Username,
		"balance":  player.Balance,
	})
}

// --- POST /api/player/redeem -------------------------------------------------

type redeemRequest struct {
	PlayerID string `json:"playerId"`
	Code     string `json:"code"`
}

func (s *FiberServer) redeemHandler(c *fiber.Ctx) error {
	if ok, retryAfter := s.redeemRate.Allow(c.IP(), time.Now()); !ok {
		c.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+1)))
		return writeError(c, fiber.StatusTooManyRequests, "too many redeem attempts")
	}

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid request body")
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid playerId")
	}

	result, err := s.store.Redeem(c.Context(), playerID, req.Code, s.env.SecretSeed, time.Now().UTC())
	if err != nil {
		return s.handleErr(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"value":   result.Value,
		"balance": result.BalanceAfter,
	})
}

// --- GET /api/player/:id/ledger ----------------------------------------------

func (s *FiberServer) playerLedgerHandler(c *fiber.Ctx) error {
	playerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid player id")
	}

	limit := clampLimit(c.Query("limit"), 50, 1, 200)
	entries, err := s.store.ListLedger(c.Context(), s.store.Pool, playerID, limit)
	if err != nil {
		return s.handleErr(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "ledger": entries})
}

// --- POST /api/bet -----------------------------------------------------------

type placeBetRequest struct {
	PlayerID string `json:"playerId"`
	Nums     []int  `json:"nums"`
	Chance   int    `json:"chance"`
	Amount   int64  `json:"amount"`
}

func (s *FiberServer) placeBetHandler(c *fiber.Ctx) error {
	var req placeBetRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid request body")
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid playerId")
	}

	result, conflict, err := s.betting.PlaceBet(c.Context(), betting.Request{
		PlayerID: playerID,
		Nums:     req.Nums,
		Chance:   req.Chance,
		Amount:   req.Amount,
	})
	if err != nil {
		if conflict != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":          "bets closed",
				"roundId":        conflict.RoundID,
				"secondsToClose": conflict.SecondsToClose,
			})
		}
		return s.handleErr(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"betId":   result.Bet.ID,
		"balance": result.BalanceAfter,
	})
}

// --- GET /api/leaderboard -----------------------------------------------------

func (s *FiberServer) leaderboardHandler(c *fiber.Ctx) error {
	limit := clampLimit(c.Query("limit"), 20, 1, 100)

	var players []ledger.Player
	if s.cache != nil && limit == 20 {
		if ok, _ := s.cache.GetJSON(c.Context(), cache.LeaderboardKey, &players); ok {
			return c.JSON(fiber.Map{"ok": true, "leaderboard": players})
		}
	}

	players, err := s.store.ListLeaderboard(c.Context(), s.store.Pool, limit)
	if err != nil {
		return s.handleErr(c, err)
	}
	if s.cache != nil && limit == 20 {
		_ = s.cache.SetJSON(c.Context(), cache.LeaderboardKey, players, cache.LeaderboardTTL)
	}

	return c.JSON(fiber.Map{"ok": true, "leaderboard": players})
}

// --- GET/PUT /api/admin/config -------------------------------------------------

func (s *FiberServer) getConfigHandler(c *fiber.Ctx) error {
	p := s.timing.Load()
	return c.JSON(fiber.Map{
		"ok":           true,
		"roundSeconds": p.RoundSeconds,
		"closeBetsAt":  p.CloseBetsAt,
		"anchorMs":     p.AnchorMs,
	})
}

type configUpdateRequest struct {
	RoundSeconds *int64 `json:"roundSeconds"`
	CloseBetsAt  *int64 `json:"closeBetsAt"`
	AnchorMs     *int64 `json:"anchorMs"`
}

func (s *FiberServer) putConfigHandler(c *fiber.Ctx) error {
	var req configUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid request body")
	}

	next := s.timing.Update(config.TimingUpdate{
		RoundSeconds: req.RoundSeconds,
		CloseBetsAt:  req.CloseBetsAt,
		AnchorMs:     req.AnchorMs,
	}, time.Now().UTC())

	return c.JSON(fiber.Map{
		"ok":           true,
		"roundSeconds": next.RoundSeconds,
		"closeBetsAt":  next.CloseBetsAt,
		"anchorMs":     next.AnchorMs,
	})
}

// --- POST /api/admin/gift-codes -----------------------------------------------

type giftCodesRequest struct {
	N         int        `json:"n"`
	Value     int64      `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (s *FiberServer) generateGiftCodesHandler(c *fiber.Ctx) error {
	var req giftCodesRequest
	if err := c.BodyParser(&req); err != nil || req.N <= 0 || req.Value <= 0 {
		return writeError(c, fiber.StatusBadRequest, "n and value must be positive")
	}

	var codes []string
	err := s.store.WithTx(c.Context(), func(tx pgx.Tx) error {
		out, err := s.store.GenerateCodes(c.Context(), tx, req.N, req.Value, req.ExpiresAt, s.env.SecretSeed)
		if err != nil {
			return err
		}
		codes = out
		return nil
	})
	if err != nil {
		return s.handleErr(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "codes": codes})
}

// --- POST /api/admin/settle, POST /api/settle ----------------------------------

type settleRequest struct {
	RoundID *int64 `json:"roundId"`
}

func (s *FiberServer) settleHandler(c *fiber.Ctx) error {
	var req settleRequest
	_ = c.BodyParser(&req) // body is optional; omitted roundId settles the prior round

	roundID := int64(-1)
	if req.RoundID != nil {
		roundID = *req.RoundID
	}

	result, err := s.settle.Settle(c.Context(), roundID)
	if err != nil {
		return s.handleErr(c, err)
	}

	if result.AlreadySettled {
		return c.JSON(fiber.Map{"ok": true, "alreadySettled": true, "outcome": result.Outcome})
	}

	s.BroadcastRoundEvent("round_settled", fiber.Map{"roundId": result.RoundID, "outcome": result.Outcome})

	return c.JSON(fiber.Map{
		"ok":        true,
		"roundId":   result.RoundID,
		"outcome":   result.Outcome,
		"pot":       result.Pot,
		"adminTake": result.AdminTake,
		"carryOut":  result.CarryOut,
	})
}

func clampLimit(raw string, def, min, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
