package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashWithSeed computes SHA-256("DDJ|" || secretSeed || "|" || value),
// the construction spec.md §4.5 specifies for gift-code hashing.
func hashWithSeed(secretSeed, value string) string {
	sum := sha256.Sum256([]byte("DDJ|" + secretSeed + "|" + value))
	return hex.EncodeToString(sum[:])
}
