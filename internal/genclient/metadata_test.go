package genclient

import "testing"

func TestInferPrimaryColor(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"una camisa roja elegante", "rojo"},
		{"hazla azul, por favor", "azul"},
		{"color marrón oscuro", "marrón"},
		{"¡Blanca y luminosa!", "blanco"},
		{"algo bonito", "neutro"},
		{"", "neutro"},
	}
	for _, c := range cases {
		if got := inferPrimaryColor(c.text); got != c.want {
			t.Fatalf("inferPrimaryColor(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestBuildGarmentPrompt_StableOrder(t *testing.T) {
	req := GarmentRequest{
		Category: "top", Style: "casual", Occasion: "oficina", RequestText: "con bolsillos",
	}
	want := "Prenda de ropa, categoría top, estilo casual, para ocasión oficina. con bolsillos"
	if got := buildGarmentPrompt(req); got != want {
		t.Fatalf("prompt = %q, want %q", got, want)
	}
	// Identical intent yields an identical prompt; the response cache keys
	// on this.
	if buildGarmentPrompt(req) != buildGarmentPrompt(req) {
		t.Fatal("prompt not deterministic")
	}
}

func TestBuildGarmentPrompt_PartialFields(t *testing.T) {
	if got := buildGarmentPrompt(GarmentRequest{Category: "shoes"}); got != "Prenda de ropa, categoría shoes" {
		t.Fatalf("prompt = %q", got)
	}
	if got := buildGarmentPrompt(GarmentRequest{}); got != "Prenda de ropa" {
		t.Fatalf("prompt = %q", got)
	}
}
