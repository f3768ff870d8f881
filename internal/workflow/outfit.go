// Package workflow – outfit suggestion validator.
//
// The AI proposes a three-item outfit by referencing inventory item ids; this
// file checks that proposal against the resolved category map before it is
// ever shown to the caller. Validation fails closed: any missing id,
// duplicate id, unknown id, or slot mismatch rejects the whole suggestion and
// reports human-readable warnings instead. The workflow therefore never
// forwards a hallucinated or miscategorized reference.
package workflow

import "fmt"

// OutfitSuggestion is a validated three-slot outfit proposal.
type OutfitSuggestion struct {
	TopID        string  `json:"top_id"`
	BottomID     string  `json:"bottom_id"`
	ShoesID      string  `json:"shoes_id"`
	Explanation  string  `json:"explanation,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	MissingPiece string  `json:"missing_piece,omitempty"`
}

// ValidateOutfitSuggestion checks a candidate suggestion against the resolved
// category map. It returns the suggestion only when every gate passes;
// otherwise it returns nil plus the list of warnings. Confidence is clamped
// to [0,1]; the optional missing-piece note passes through verbatim.
func ValidateOutfitSuggestion(cand OutfitSuggestion, categories map[string]string) (*OutfitSuggestion, []string) {
	var warnings []string

	slots := []struct {
		id   string
		slot string
	}{
		{cand.TopID, CategoryTop},
		{cand.BottomID, CategoryBottom},
		{cand.ShoesID, CategoryShoes},
	}

	for _, s := range slots {
		if s.id == "" {
			warnings = append(warnings, fmt.Sprintf("falta el artículo para %s", s.slot))
		}
	}

	if cand.TopID != "" && cand.TopID == cand.BottomID ||
		cand.TopID != "" && cand.TopID == cand.ShoesID ||
		cand.BottomID != "" && cand.BottomID == cand.ShoesID {
		warnings = append(warnings, "la sugerencia repite el mismo artículo en más de una posición")
	}

	for _, s := range slots {
		if s.id == "" {
			continue
		}
		got, ok := categories[s.id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("el artículo %s no existe en tu clóset", s.id))
			continue
		}
		if got != s.slot {
			warnings = append(warnings, fmt.Sprintf("el artículo %s es %s, no %s", s.id, got, s.slot))
		}
	}

	if len(warnings) > 0 {
		return nil, warnings
	}

	out := cand
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}
