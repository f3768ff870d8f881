// Package utils – content hashing.
//
// The response cache and the idempotency ledger share one hashing approach:
// requests are reduced to the fields that determine the answer (prompt text,
// a normalized inventory snapshot) and hashed with SHA-256, so that retries
// and semantically identical requests collapse onto the same key regardless
// of field order or cosmetic whitespace.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// HashPrompt returns the hex SHA-256 of a prompt after trimming and
// whitespace collapsing, lowercased. Two prompts differing only in casing or
// spacing hash identically.
func HashPrompt(prompt string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

// InventoryEntry is the minimal view of an inventory item that participates
// in snapshot hashing: the stable id plus the category text the resolver saw.
type InventoryEntry struct {
	ID       string
	Category string
}

// HashInventory returns the hex SHA-256 of a normalized inventory snapshot.
// Entries are sorted by id so caller-side ordering does not change the hash.
func HashInventory(items []InventoryEntry) string {
	norm := make([]string, 0, len(items))
	for _, it := range items {
		norm = append(norm, strings.TrimSpace(it.ID)+"|"+strings.ToLower(strings.TrimSpace(it.Category)))
	}
	sort.Strings(norm)
	sum := sha256.Sum256([]byte(strings.Join(norm, "\n")))
	return hex.EncodeToString(sum[:])
}
