package domain

import "testing"

func TestRecipeMatchesExactQuantities(t *testing.T) {
	t.Parallel()

	recipe := CraftingRecipe{
		ID:          "recipe-raft",
		Ingredients: map[string]int{"wood": 2, "rope": 1},
	}

	cases := []struct {
		name       string
		quantities map[string]int
		want       bool
	}{
		{"exact match", map[string]int{"wood": 2, "rope": 1}, true},
		{"insufficient quantity", map[string]int{"wood": 1, "rope": 1}, false},
		{"surplus quantity", map[string]int{"wood": 3, "rope": 1}, false},
		{"extra type", map[string]int{"wood": 2, "rope": 1, "cheese": 1}, false},
		{"missing type", map[string]int{"wood": 2}, false},
	}
	for _, tc := range cases {
		if got := recipe.Matches(tc.quantities); got != tc.want {
			t.Fatalf("%s: matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRecipeCoversTypes(t *testing.T) {
	t.Parallel()

	recipe := CraftingRecipe{
		ID:          "recipe-raft",
		Ingredients: map[string]int{"wood": 2, "rope": 1},
	}

	if !recipe.CoversTypes(map[string]int{"wood": 1, "rope": 1}) {
		t.Fatal("expected quantities to be ignored for type coverage")
	}
	if recipe.CoversTypes(map[string]int{"wood": 2}) {
		t.Fatal("expected missing type to fail coverage")
	}
	if (CraftingRecipe{}).CoversTypes(map[string]int{"wood": 2}) {
		t.Fatal("expected empty recipe to cover nothing")
	}
}
