package utils

import "testing"

func TestHashPrompt_Normalization(t *testing.T) {
	base := HashPrompt("qué me pongo hoy")

	same := []string{
		"Qué me pongo hoy",
		"  qué   me pongo \t hoy ",
		"QUÉ ME PONGO HOY",
	}
	for _, p := range same {
		if HashPrompt(p) != base {
			t.Errorf("HashPrompt(%q) differs from the normalized base", p)
		}
	}

	if HashPrompt("qué me pongo mañana") == base {
		t.Error("different prompts collided")
	}
	if len(base) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(base))
	}
}

func TestHashInventory_OrderIndependent(t *testing.T) {
	a := []InventoryEntry{
		{ID: "i1", Category: "top"},
		{ID: "i2", Category: "bottom"},
	}
	b := []InventoryEntry{
		{ID: "i2", Category: " Bottom "},
		{ID: " i1", Category: "TOP"},
	}
	if HashInventory(a) != HashInventory(b) {
		t.Error("ordering or cosmetic differences changed the hash")
	}

	c := []InventoryEntry{
		{ID: "i1", Category: "top"},
		{ID: "i3", Category: "shoes"},
	}
	if HashInventory(a) == HashInventory(c) {
		t.Error("different snapshots collided")
	}

	if HashInventory(nil) != HashInventory([]InventoryEntry{}) {
		t.Error("nil and empty snapshots should hash identically")
	}
}

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-3", 1, -3},
		{"3.5", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
