package materials

// DefaultMaterialID is used when a request names no material.
const DefaultMaterialID = "recycled-cardboard"

// defaultMaterials are indicative per-kg rates for common packaging materials.
var defaultMaterials = []Material{
	{
		ID:      "recycled-cardboard",
		Name:    "Recycled Cardboard",
		CostUSD: Rate{Baseline: 1.10, Spread: 0.25},
		CO2Kg:   Rate{Baseline: 0.95, Spread: 0.15},
	},
	{
		ID:      "molded-pulp",
		Name:    "Molded Pulp",
		CostUSD: Rate{Baseline: 1.60, Spread: 0.30},
		CO2Kg:   Rate{Baseline: 0.80, Spread: 0.20},
	},
	{
		ID:      "biodegradable-plastic",
		Name:    "Biodegradable Plastic",
		CostUSD: Rate{Baseline: 3.20, Spread: 0.35},
		CO2Kg:   Rate{Baseline: 1.80, Spread: 0.25},
	},
	{
		ID:      "standard-plastic",
		Name:    "Standard Plastic",
		CostUSD: Rate{Baseline: 1.70, Spread: 0.20},
		CO2Kg:   Rate{Baseline: 2.40, Spread: 0.10},
	},
	{
		ID:      "styrofoam",
		Name:    "Styrofoam",
		CostUSD: Rate{Baseline: 2.00, Spread: 0.20},
		CO2Kg:   Rate{Baseline: 3.30, Spread: 0.10},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(defaultMaterials)
	if err != nil {
		panic(err)
	}
	return c
}
