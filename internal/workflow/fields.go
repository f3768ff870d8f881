// Package workflow – field collector.
//
// This file extracts structured intent (garment category, style, occasion,
// creation strategy) from free-text Spanish input using curated synonym sets
// and exact-phrase vocabularies. Matching is accent-insensitive: input is
// folded through NFD so "¡Rápido!" and "rapido" behave identically. First
// match wins, no ranking. Pure and deterministic given input; no I/O.
package workflow

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxRequestTextRunes caps the verbatim free text retained as a generation
// hint when no structured field parses.
const maxRequestTextRunes = 280

// FieldPatch is a partial update to the collected intent. Empty fields mean
// "nothing detected"; merge policy lives in the reducer.
type FieldPatch struct {
	Occasion    string
	Style       string
	Category    string
	Strategy    string
	RequestText string
}

// categorySynonyms pairs each slot with its garment-type vocabulary, in the
// order slots are probed. A message naming garments from several slots always
// resolves to the earliest listed slot, so detection stays deterministic.
var categorySynonyms = []struct {
	slot     string
	synonyms []string
}{
	{CategoryTop, []string{
		"top", "blusa", "camisa", "camiseta", "remera", "playera", "polo",
		"sueter", "sweater", "sudadera", "hoodie", "chaqueta", "abrigo",
		"cardigan", "chaleco", "crop",
	}},
	{CategoryBottom, []string{
		"pantalon", "jean", "jeans", "vaquero", "falda", "short", "bermuda",
		"legging", "jogger", "palazzo",
	}},
	{CategoryShoes, []string{
		"zapato", "zapatilla", "tenis", "sneaker", "bota", "botin", "sandalia",
		"tacon", "mocasin", "plataforma",
	}},
}

// styleVocabulary is the exact-phrase style list; first match wins.
var styleVocabulary = []string{
	"casual", "formal", "elegante", "deportivo", "boho", "minimalista",
	"vintage", "urbano", "clasico", "romantico", "moderno", "chic",
}

// occasionVocabulary is the exact-phrase occasion list; first match wins.
var occasionVocabulary = []string{
	"oficina", "trabajo", "entrevista", "fiesta", "boda", "cita", "viaje",
	"playa", "gimnasio", "reunion", "graduacion", "diario",
}

var (
	guidedRE = regexp.MustCompile(`\bguiad\w*|\bpaso a paso\b`)
	directRE = regexp.MustCompile(`\bdirect\w*|\brapido\b|\bya mismo\b|\bexpress\b`)

	affirmativeRE = regexp.MustCompile(`^\s*(si|sí|claro|ok|okay|dale|vale|confirmo|adelante|por supuesto|de acuerdo)\b`)

	// "para" doubles as the preposition "for" ("para la oficina"), so it only
	// counts as a stop when it is the entire message.
	negativeRE = regexp.MustCompile(`^\s*(no|cancela\w*|cancelar|mejor no|detente)\b|^\s*para\s*[.!]*\s*$`)
)

// foldText lowercases the input and strips diacritics so vocabulary matching
// does not depend on accents ("sí" == "si", "rápido" == "rapido").
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// CollectFields parses free text into a FieldPatch. Explicit overrides are
// merged by the reducer, not here; this function only reports what the text
// itself says. When nothing structured parses, the raw text is retained
// (truncated) as RequestText for later use as a generation hint.
func CollectFields(message string) FieldPatch {
	var patch FieldPatch
	folded := foldText(message)
	if strings.TrimSpace(folded) == "" {
		return patch
	}

	for _, cs := range categorySynonyms {
		for _, syn := range cs.synonyms {
			if containsWordPrefix(folded, syn) {
				patch.Category = cs.slot
				break
			}
		}
		if patch.Category != "" {
			break
		}
	}

	for _, style := range styleVocabulary {
		if containsWordPrefix(folded, style) {
			patch.Style = style
			break
		}
	}

	for _, occ := range occasionVocabulary {
		if containsWordPrefix(folded, occ) {
			patch.Occasion = occ
			break
		}
	}

	patch.Strategy = detectStrategy(folded)

	if patch.Category == "" && patch.Style == "" && patch.Occasion == "" {
		patch.RequestText = truncateRunes(strings.TrimSpace(message), maxRequestTextRunes)
	}

	return patch
}

// detectStrategy returns direct, guided, or "" from folded text.
// Guided keywords win over direct when both appear: the explicit request for
// guidance is the stronger signal.
func detectStrategy(folded string) string {
	if guidedRE.MatchString(folded) {
		return StrategyGuided
	}
	if directRE.MatchString(folded) {
		return StrategyDirect
	}
	return ""
}

// IsAffirmative reports whether the message reads as a yes.
func IsAffirmative(message string) bool {
	return affirmativeRE.MatchString(foldText(message))
}

// IsNegative reports whether the message reads as a no or a cancellation.
func IsNegative(message string) bool {
	return negativeRE.MatchString(foldText(message))
}

// containsWordPrefix reports whether any word in folded text starts with the
// synonym. Prefix matching absorbs plural and diminutive suffixes
// ("zapatos", "camisetas") without enumerating them.
func containsWordPrefix(folded, syn string) bool {
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if strings.HasPrefix(w, syn) {
			return true
		}
	}
	return false
}

// truncateRunes clips s to at most max runes.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
