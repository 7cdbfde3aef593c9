// Package insights holds the static figures behind the dashboard overview.
package insights

// RevenuePoint is one month of the revenue chart. Actual is nil for months
// that have not happened yet.
type RevenuePoint struct {
	Month    string `json:"month"`
	Actual   *int   `json:"actual"`
	Forecast int    `json:"forecast"`
}

func actual(v int) *int { return &v }

// RevenueForecast returns the Jan-Dec actual vs forecast series.
func RevenueForecast() []RevenuePoint {
	return []RevenuePoint{
		{Month: "Jan", Actual: actual(42000), Forecast: 45000},
		{Month: "Feb", Actual: actual(48000), Forecast: 47000},
		{Month: "Mar", Actual: actual(51000), Forecast: 52000},
		{Month: "Apr", Actual: actual(55000), Forecast: 56000},
		{Month: "May", Actual: actual(62000), Forecast: 60000},
		{Month: "Jun", Actual: actual(67000), Forecast: 68000},
		{Month: "Jul", Forecast: 73000},
		{Month: "Aug", Forecast: 78000},
		{Month: "Sep", Forecast: 82000},
		{Month: "Oct", Forecast: 88000},
		{Month: "Nov", Forecast: 92000},
		{Month: "Dec", Forecast: 98000},
	}
}

type GrowthPoint struct {
	Month  string `json:"month"`
	Growth int    `json:"growth"`
}

type ScoreFactor struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
}

// CreditScore is the merchant credit summary.
type CreditScore struct {
	Score                  int           `json:"score"`
	MaxScore               int           `json:"maxScore"`
	Category               string        `json:"category"`
	FulfillmentReliability float64       `json:"fulfillmentReliability"`
	RevenueGrowth          []GrowthPoint `json:"revenueGrowth"`
	Factors                []ScoreFactor `json:"factors"`
}

func CurrentCreditScore() CreditScore {
	return CreditScore{
		Score:                  847,
		MaxScore:               1000,
		Category:               "Excellent",
		FulfillmentReliability: 94.7,
		RevenueGrowth: []GrowthPoint{
			{"Sep", 12}, {"Oct", 15}, {"Nov", 18}, {"Dec", 14}, {"Jan", 22}, {"Feb", 28},
		},
		Factors: []ScoreFactor{
			{"Payment History", 92, 30},
			{"Fulfillment Rate", 95, 25},
			{"Revenue Stability", 88, 20},
			{"Growth Trajectory", 78, 15},
			{"Market Diversity", 72, 10},
		},
	}
}

// WeightedFactorScore is the weight-averaged factor score, 0-100.
func (c CreditScore) WeightedFactorScore() float64 {
	var sum, weights int
	for _, f := range c.Factors {
		sum += f.Score * f.Weight
		weights += f.Weight
	}
	if weights == 0 {
		return 0
	}
	return float64(sum) / float64(weights)
}
