// Package server wires the HTTP surface: Fiber routes, admin auth, the
// rate limiter, and an additive websocket notifier, over the ledger,
// round, betting, and settlement packages.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ddj/internal/betting"
	"ddj/internal/cache"
	"ddj/internal/config"
	"ddj/internal/database"
	"ddj/internal/ledger"
	"ddj/internal/ratelimit"
	"ddj/internal/settlement"
)

const (
	redeemRateLimit  = 5
	redeemRateWindow = 60 * time.Second
)

// FiberServer is the process's single HTTP server, composing every
// domain package behind the contract in spec.md §6.
type FiberServer struct {
	*fiber.App

	db      database.Service
	cache   cache.Service
	store   *ledger.Store
	timing  *config.TimingSnapshot
	betting *betting.Service
	settle  *settlement.Service

	env        *config.Env
	redeemRate *ratelimit.Limiter
	hub        *roundHub
	log        *zap.Logger
}

// New builds a FiberServer from its already-connected dependencies.
func New(env *config.Env, log *zap.Logger, db database.Service, cache cache.Service, store *ledger.Store, timing *config.TimingSnapshot) *FiberServer {
	s := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "ddj",
			AppName:      "ddj",
		}),

		db:      db,
		cache:   cache,
		store:   store,
		timing:  timing,
		betting: betting.New(store, timing),
		settle:  settlement.New(store, timing, env.SecretSeed),

		env:        env,
		redeemRate: ratelimit.New(redeemRateLimit, redeemRateWindow),
		hub:        newRoundHub(log),
		log:        log,
	}

	go s.hub.Run()

	s.registerRoutes()
	return s
}

// BroadcastRoundEvent is called by the settlement scheduler (cmd/ddj)
// after a round transition so connected websocket clients get a
// best-effort push in addition to polling GET /api/round.
func (s *FiberServer) BroadcastRoundEvent(event string, payload interface{}) {
	s.hub.Broadcast(fiber.Map{"type": event, "data": payload})
}

// Shutdown stops background goroutines owned by the server. The Fiber
// app itself is shut down by the caller via s.App.Shutdown.
func (s *FiberServer) Shutdown() {
	s.redeemRate.Stop()
}
