// Command ddj is the process entrypoint: it loads configuration, wires
// the database pool, cache, ledger store, and HTTP server together, and
// runs a background scheduler that settles each round as it ends.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ddj/internal/cache"
	"ddj/internal/config"
	"ddj/internal/database"
	"ddj/internal/ledger"
	"ddj/internal/logging"
	"ddj/internal/round"
	"ddj/internal/server"
	"ddj/internal/settlement"
)

func main() {
	log := logging.New()
	defer log.Sync() //nolint:errcheck

	env, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	db := database.New()
	redisCache := cache.New()

	store := ledger.New(db.Pool())
	timing := config.NewTimingSnapshot(config.TimingParams{
		RoundSeconds: env.RoundSeconds,
		CloseBetsAt:  env.CloseBetsAt,
		AnchorMs:     env.AnchorMs,
	})

	srv := server.New(env, log, db, redisCache, store, timing)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go runSettlementScheduler(schedulerCtx, log, settlement.New(store, timing, env.SecretSeed), timing, srv)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", env.Port)
		log.Info("listening", zap.String("addr", addr))
		if err := srv.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
		}
	}

	stopScheduler()
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.App.ShutdownWithContext(ctx); err != nil {
		log.Error("fiber shutdown", zap.Error(err))
	}
	if err := redisCache.Close(); err != nil {
		log.Error("cache close", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("database close", zap.Error(err))
	}
}

// runSettlementScheduler wakes up once per round boundary and settles
// the round that just ended, broadcasting the result over the websocket
// hub. Each wake settles only the round that was current when the wait
// began: a round that ended while the process was down, or whose
// settlement failed, is not settled again by this loop.
func runSettlementScheduler(ctx context.Context, log *zap.Logger, settle *settlement.Service, timing *config.TimingSnapshot, srv *server.FiberServer) {
	for {
		params := timing.Load()
		now := time.Now().UTC()
		info := round.Snapshot(params, now)
		wait := time.Duration(info.EndMs-now.UnixMilli()) * time.Millisecond
		if wait <= 0 {
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		result, err := settle.Settle(ctx, info.RoundID)
		if err != nil {
			log.Warn("round settlement failed", zap.Int64("roundId", info.RoundID), zap.Error(err))
			continue
		}
		if result.AlreadySettled {
			continue
		}

		log.Info("round settled",
			zap.Int64("roundId", result.RoundID),
			zap.Int64("pot", result.Pot),
			zap.Int64("adminTake", result.AdminTake),
			zap.Int64("carryOut", result.CarryOut),
		)
		srv.BroadcastRoundEvent("round_settled", map[string]interface{}{
			"roundId": result.RoundID,
			"outcome": result.Outcome,
		})
	}
}
