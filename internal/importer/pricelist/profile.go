package pricelist

// Profile describes the column layout of a price list.
// Adding a layout is just adding a Profile to the profiles slice.
type Profile struct {
	Name        string
	NameCol     string
	QuantityCol string
	UnitCol     string
	PriceCol    string
	DescCol     string // optional
	DiscountCol string // optional
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.NameCol, p.QuantityCol, p.UnitCol, p.PriceCol}
}

// profiles is the ordered list of layouts tried during auto-detection.
// Headers are compared case-insensitively.
var profiles = []Profile{
	{
		Name:        "standard",
		NameCol:     "name",
		DescCol:     "description",
		QuantityCol: "quantity",
		UnitCol:     "unit",
		PriceCol:    "unit price",
		DiscountCol: "discount",
	},
	{
		Name:        "compact",
		NameCol:     "item",
		QuantityCol: "qty",
		UnitCol:     "uom",
		PriceCol:    "rate",
		DiscountCol: "disc %",
	},
}
