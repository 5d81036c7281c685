package cache

import (
	"strconv"
	"time"
)

// Cache keys and TTLs. The leaderboard key backs the HTTP layer's
// read-through leaderboard read; the leaderboard is derived entirely
// from Postgres and recomputed on a miss, so a short TTL is fine. The
// round snapshot key and TTL are defined here, but GET /api/round
// computes its snapshot directly and does not use the cache.
const (
	LeaderboardKey = "ddj:leaderboard"
	LeaderboardTTL = 5 * time.Second

	RoundSnapshotTTL = 1 * time.Second
)

// RoundSnapshotKey namespaces the current round snapshot by round id so
// a stale cached snapshot from the previous round can never be served
// across a round boundary.
func RoundSnapshotKey(roundID int64) string {
	return "ddj:round:" + strconv.FormatInt(roundID, 10)
}
