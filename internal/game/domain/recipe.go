package domain

import "time"

// CraftingRecipe maps required input item quantities to one output item.
// Recipes are read-only content from the crafting engine's perspective.
type CraftingRecipe struct {
	ID                string
	Name              string
	Ingredients       map[string]int // item type -> required quantity
	ResultItemType    string
	ResultItemName    string
	ResultDescription string
	CreatedAt         time.Time
}

// Matches reports whether the aggregated quantities satisfy this recipe.
// The submitted item types must be exactly the ingredient types, but each
// type may carry more than the required quantity: old items are consumed
// or modified, so surplus stays in the surplus stack after crafting.
func (r CraftingRecipe) Matches(quantitiesByType map[string]int) bool {
	if len(quantitiesByType) != len(r.Ingredients) {
		return false
	}
	for itemType, required := range r.Ingredients {
		if quantitiesByType[itemType] < required {
			return false
		}
	}
	return true
}

// CoversTypes reports whether every ingredient type appears among the
// submitted types, regardless of quantity. Used to distinguish a wrong
// composition for a known recipe from a submission no recipe recognizes.
func (r CraftingRecipe) CoversTypes(quantitiesByType map[string]int) bool {
	for itemType := range r.Ingredients {
		if _, ok := quantitiesByType[itemType]; !ok {
			return false
		}
	}
	return len(r.Ingredients) > 0
}
