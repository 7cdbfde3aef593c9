package ingest

// Category describes one kind of business data the dashboard asks for.
// Ingest does not enforce ExpectedColumns; they are shown to the user as a hint.
type Category struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	ExpectedColumns []string `json:"expectedColumns"`
	SampleRow       string   `json:"sampleRow"`
}

var categories = []Category{
	{
		ID:              "sales",
		Label:           "Sales Data",
		Description:     "Historical transaction records with dates, amounts, products, and customer segments",
		ExpectedColumns: []string{"date", "product_id", "product_name", "quantity", "revenue", "region"},
		SampleRow:       "2026-01-15, SKU001, Wireless Earbuds, 120, 4800, Maharashtra",
	},
	{
		ID:              "inventory",
		Label:           "Inventory Data",
		Description:     "Current stock levels, warehouse locations, reorder points, and lead times",
		ExpectedColumns: []string{"product_id", "product_name", "stock_qty", "warehouse", "reorder_point", "lead_time_days"},
		SampleRow:       "SKU001, Wireless Earbuds, 2400, Mumbai-W1, 500, 7",
	},
	{
		ID:              "pricing",
		Label:           "Pricing Data",
		Description:     "Product pricing, cost basis, margins, competitor prices, and discount tiers",
		ExpectedColumns: []string{"product_id", "product_name", "cost_price", "selling_price", "competitor_price", "discount_pct"},
		SampleRow:       "SKU001, Wireless Earbuds, 28.00, 40.00, 42.00, 10",
	},
	{
		ID:              "marketing",
		Label:           "Marketing Data",
		Description:     "Campaign performance, ad spend, impressions, conversions, and channel breakdowns",
		ExpectedColumns: []string{"campaign_id", "channel", "spend", "impressions", "clicks", "conversions"},
		SampleRow:       "CMP-2026-01, Instagram, 5000, 250000, 12000, 840",
	},
	{
		ID:              "regional",
		Label:           "Regional Market Data",
		Description:     "Demand indices, risk scores, population data, and market category affinity by region",
		ExpectedColumns: []string{"region", "state", "demand_index", "risk_score", "population", "top_category"},
		SampleRow:       "MH, Maharashtra, 92, 18, 12400000, Electronics",
	},
	{
		ID:              "simulation",
		Label:           "User Simulation Inputs",
		Description:     "Custom scenario parameters for price elasticity, inventory buffers, and marketing coefficients",
		ExpectedColumns: []string{"parameter", "min_value", "max_value", "default_value", "unit", "description"},
		SampleRow:       "price_elasticity, -2.0, 0, -0.8, coefficient, Price sensitivity factor",
	},
}

// Categories returns the known upload categories.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether id is one of the known category IDs. Uploads
// may still use other categories; this only bounds metric labels.
func IsCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
