package plastic

import "github.com/shopspring/decimal"

// CatalogItem is one recyclable item type students can log.
type CatalogItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	WeightKg decimal.Decimal `json:"weight_kg"`
	Points   int             `json:"points"`
}

// co2FactorPerKg approximates the CO2 avoided per kilogram of plastic
// diverted from landfill.
var co2FactorPerKg = decimal.NewFromFloat(1.5)

var catalog = []CatalogItem{
	{ID: "bottle", Name: "Plastic Bottle", WeightKg: decimal.NewFromFloat(0.02), Points: 5},
	{ID: "bag", Name: "Plastic Bag", WeightKg: decimal.NewFromFloat(0.005), Points: 2},
	{ID: "wrapper", Name: "Food Wrapper", WeightKg: decimal.NewFromFloat(0.001), Points: 1},
	{ID: "container", Name: "Container", WeightKg: decimal.NewFromFloat(0.05), Points: 10},
}

// Catalog returns the recyclable item types.
func Catalog() []CatalogItem {
	out := make([]CatalogItem, len(catalog))
	copy(out, catalog)
	return out
}

func findCatalogItem(id string) (CatalogItem, bool) {
	for _, item := range catalog {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}
