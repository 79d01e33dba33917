// Package nutrition provides verified nutrition lookups backed by a two-tier
// remote catalog (USDA FoodData Central for raw ingredients, Open Food Facts
// for packaged goods) with a time-boxed local cache.
package nutrition

import "errors"

// ErrNotFound signals a lookup miss. Not an error condition for callers:
// agents proceed with model-only estimation when no verified data exists.
var ErrNotFound = errors.New("nutrition: food not found")

// Nutrients holds per-serving nutrient figures. Zero means not reported.
type Nutrients struct {
	Calories float64 `json:"calories,omitempty"`
	ProteinG float64 `json:"protein_g,omitempty"`
	CarbsG   float64 `json:"carbs_g,omitempty"`
	FatG     float64 `json:"fat_g,omitempty"`
	FiberG   float64 `json:"fiber_g,omitempty"`
	SugarsG  float64 `json:"sugars_g,omitempty"`
	SodiumMG float64 `json:"sodium_mg,omitempty"`
}

// Record is the normalized result of a catalog lookup.
type Record struct {
	FoodName    string    `json:"food_name"`
	Nutrients   Nutrients `json:"nutrients"`
	ServingSize float64   `json:"serving_size,omitempty"`
	ServingUnit string    `json:"serving_unit,omitempty"`
	Source      string    `json:"source"`
}
