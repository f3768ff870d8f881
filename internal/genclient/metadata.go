package genclient

import (
	"strings"

	"github.com/tidwall/gjson"
)

// colorVocabulary maps Spanish color names (and common variants) to the
// canonical color stored on artifacts. Ordered lists are not needed; the
// first match in the request text wins via iteration over the text.
var colorVocabulary = map[string]string{
	"negro":    "negro",
	"negra":    "negro",
	"blanco":   "blanco",
	"blanca":   "blanco",
	"rojo":     "rojo",
	"roja":     "rojo",
	"azul":     "azul",
	"verde":    "verde",
	"amarillo": "amarillo",
	"amarilla": "amarillo",
	"rosa":     "rosa",
	"morado":   "morado",
	"morada":   "morado",
	"gris":     "gris",
	"beige":    "beige",
	"marron":   "marrón",
	"marrón":   "marrón",
	"naranja":  "naranja",
	"dorado":   "dorado",
	"plateado": "plateado",
}

// inferPrimaryColor scans free text for a known color word. Returns "neutro"
// when nothing matches, so artifacts always carry a usable color.
func inferPrimaryColor(text string) string {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!¡¿?\"'()")
		if c, ok := colorVocabulary[word]; ok {
			return c
		}
	}
	return "neutro"
}

// buildGarmentPrompt renders the collected intent into the provider prompt.
// Field order is stable so identical intent always produces an identical
// prompt, which the response cache keys on.
func buildGarmentPrompt(req GarmentRequest) string {
	var b strings.Builder
	b.WriteString("Prenda de ropa")
	if req.Category != "" {
		b.WriteString(", categoría ")
		b.WriteString(req.Category)
	}
	if req.Style != "" {
		b.WriteString(", estilo ")
		b.WriteString(req.Style)
	}
	if req.Occasion != "" {
		b.WriteString(", para ocasión ")
		b.WriteString(req.Occasion)
	}
	if req.RequestText != "" {
		b.WriteString(". ")
		b.WriteString(req.RequestText)
	}
	return b.String()
}

// fillMetadata completes the artifact with provider metadata when present
// and local inference otherwise.
func fillMetadata(out *GarmentResult, req GarmentRequest, res gjson.Result) {
	out.PrimaryColor = res.Get("metadata.primary_color").String()
	if out.PrimaryColor == "" {
		out.PrimaryColor = inferPrimaryColor(req.RequestText + " " + req.Style)
	}
	if tags := res.Get("metadata.style_tags"); tags.IsArray() {
		for _, t := range tags.Array() {
			if s := t.String(); s != "" {
				out.StyleTags = append(out.StyleTags, s)
			}
		}
	}
	if len(out.StyleTags) == 0 && req.Style != "" {
		out.StyleTags = []string{req.Style}
	}
	if seasons := res.Get("metadata.seasons"); seasons.IsArray() {
		for _, t := range seasons.Array() {
			if s := t.String(); s != "" {
				out.Seasons = append(out.Seasons, s)
			}
		}
	}
	if len(out.Seasons) == 0 {
		out.Seasons = []string{"todo_el_año"}
	}
}
