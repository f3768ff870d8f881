// Package workflow – inventory category resolver.
//
// This file normalizes a caller-supplied inventory snapshot into one of the
// three outfit slots (top, bottom, shoes) per item, using the same garment
// vocabulary as the field collector. Items that match nothing map to the
// "other" bucket and can never satisfy a slot. Pure functions, no I/O.
package workflow

import (
	"sort"
	"time"
)

// Slot categories.
const (
	CategoryTop    = "top"
	CategoryBottom = "bottom"
	CategoryShoes  = "shoes"
	CategoryOther  = "other"
)

// SnapshotItem is one entry of the caller-supplied inventory snapshot: the
// stable item id plus whatever raw category/subcategory text the client has.
type SnapshotItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ResolveCategories maps each snapshot item id to its slot. Category text is
// checked before subcategory, then the item name; the first vocabulary hit
// wins. Unmatched items resolve to CategoryOther.
func ResolveCategories(items []SnapshotItem) map[string]string {
	out := make(map[string]string, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		out[it.ID] = resolveOne(it)
	}
	return out
}

func resolveOne(it SnapshotItem) string {
	for _, text := range []string{it.Category, it.Subcategory, it.Name} {
		folded := foldText(text)
		if folded == "" {
			continue
		}
		for _, cs := range categorySynonyms {
			for _, syn := range cs.synonyms {
				if containsWordPrefix(folded, syn) {
					return cs.slot
				}
			}
		}
	}
	return CategoryOther
}

// TrimInventory caps the snapshot at max items, keeping the most recently
// updated first. The trimmed, ordered snapshot is what gets hashed for the
// response cache and forwarded to the generation service, so the ordering
// here is part of the cache-key contract.
func TrimInventory(items []SnapshotItem, max int) []SnapshotItem {
	if max <= 0 || len(items) == 0 {
		return nil
	}
	out := make([]SnapshotItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}
