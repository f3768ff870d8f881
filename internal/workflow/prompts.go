// Package workflow – user-facing copy.
//
// All Spanish reply text lives here, out of the reducer, so transitions stay
// readable and the copy can change without touching transition logic.
package workflow

import "fmt"

// Missing-field question priority: occasion first, then style, then category.
var missingFieldOrder = []string{"occasion", "style", "category"}

var missingFieldQuestions = map[string]string{
	"occasion": "¿Para qué ocasión lo quieres? (por ejemplo: oficina, fiesta, cita)",
	"style":    "¿Qué estilo prefieres? (por ejemplo: casual, formal, elegante)",
	"category": "¿Qué prenda buscas? (top, pantalón o zapatos)",
}

// MissingFields returns the unfilled required fields in question order.
// The direct strategy only requires a category; guided requires occasion,
// style, and category.
func MissingFields(strategy string, s SessionState) []string {
	required := []string{"category"}
	if strategy == StrategyGuided {
		required = missingFieldOrder
	}
	var missing []string
	for _, f := range required {
		switch f {
		case "occasion":
			if s.Occasion == "" {
				missing = append(missing, f)
			}
		case "style":
			if s.Style == "" {
				missing = append(missing, f)
			}
		case "category":
			if s.Category == "" {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// NextQuestion returns the question for the first missing field.
func NextQuestion(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return missingFieldQuestions[missing[0]]
}

func msgChooseStrategy() string {
	return "¿Cómo quieres crear tu prenda? Puedo guiarte paso a paso (guiado) o ir directo con lo que me digas (directo)."
}

func msgConfirmQuote(pending string, cost int) string {
	verb := map[string]string{
		PendingGenerate: "generar tu prenda",
		PendingEdit:     "aplicar el cambio",
		PendingTryOn:    "probarte el look",
	}[pending]
	return fmt.Sprintf("Listo para %s. Esto usará %d créditos. ¿Confirmas?", verb, cost)
}

func msgStarted() string {
	return "¡Empecemos! Cuéntame qué prenda tienes en mente."
}

func msgCancelled() string {
	return "Sin problema, cancelé la operación. Escribe \"empezar\" cuando quieras retomar."
}

func msgBackToGenerated() string {
	return "Cancelé la acción pendiente. Tu prenda generada sigue disponible."
}

func msgAutosave(enabled bool) string {
	if enabled {
		return "Guardado automático activado: tus prendas generadas se añadirán solas a tu clóset."
	}
	return "Guardado automático desactivado."
}

func msgSessionExpired() string {
	return "Tu sesión expiró. Escribe \"empezar\" para comenzar de nuevo."
}

func msgInvalidConfirmation() string {
	return "No pude validar tu confirmación. Vuelve a solicitar la acción para recibir una nueva cotización."
}

func msgAlreadyGenerated() string {
	return "Esa generación ya se completó; aquí tienes tu prenda."
}

func msgInProgress() string {
	return "Tu generación sigue en curso, dame unos segundos más."
}

func msgNeedArtifact() string {
	return "Primero necesitas generar una prenda antes de esa acción."
}

func msgSelfieReceived() string {
	return "¡Recibí tu foto! Cuando quieras, pide el probador virtual."
}

func msgNeedSelfie() string {
	return "Para el probador virtual necesito primero una foto tuya."
}

func msgSaved(already bool) string {
	if already {
		return "Esa prenda ya está en tu clóset."
	}
	return "¡Guardada! Tu prenda ya está en tu clóset."
}

func msgGenerated() string {
	return "¡Aquí está tu prenda! Puedes pedir cambios, probártela o guardarla en tu clóset."
}

func msgTryOnDone() string {
	return "¡Así te quedaría! ¿Quieres ajustar algo más?"
}

func msgOutfitSuggestion() string {
	return "Te propongo este look combinando tu nueva prenda con tu clóset:"
}

func msgOutfitRejected() string {
	return "No encontré una combinación confiable con tu clóset actual."
}

func msgEditRecorded() string {
	return "Anoté el cambio que quieres."
}

func msgGenerationFailed(code string) string {
	switch code {
	case CodeInsufficientCredits:
		return "No te quedan créditos suficientes para esta acción."
	case CodeGenerationTimeout:
		return "El servicio de generación tardó demasiado. No se usaron créditos; intenta de nuevo."
	case CodeTryOnFailed:
		return "No pude completar el probador virtual. No se usaron créditos."
	default:
		return "No pude generar tu prenda esta vez. No se usaron créditos; intenta de nuevo."
	}
}
