package demand

// Region is one market on the India demand map.
type Region struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Demand        int    `json:"demand"`
	Risk          int    `json:"risk"`
	Category      string `json:"category"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Size          int    `json:"size"`
	MonthlyVolume int    `json:"monthlyVolume"`
}

var fixture = []Region{
	{ID: "MH", Name: "Maharashtra", Demand: 92, Risk: 18, Category: "Electronics", X: 180, Y: 340, Size: 42},
	{ID: "DL", Name: "Delhi NCR", Demand: 88, Risk: 22, Category: "Fashion", X: 215, Y: 170, Size: 35},
	{ID: "KA", Name: "Karnataka", Demand: 85, Risk: 15, Category: "FMCG", X: 175, Y: 430, Size: 38},
	{ID: "TN", Name: "Tamil Nadu", Demand: 80, Risk: 20, Category: "Automotive", X: 200, Y: 490, Size: 36},
	{ID: "GJ", Name: "Gujarat", Demand: 78, Risk: 25, Category: "Textiles", X: 135, Y: 280, Size: 34},
	{ID: "UP", Name: "Uttar Pradesh", Demand: 75, Risk: 30, Category: "Agriculture", X: 240, Y: 200, Size: 40},
	{ID: "WB", Name: "West Bengal", Demand: 72, Risk: 28, Category: "Electronics", X: 320, Y: 260, Size: 32},
	{ID: "RJ", Name: "Rajasthan", Demand: 68, Risk: 35, Category: "Textiles", X: 155, Y: 220, Size: 38},
	{ID: "AP", Name: "Andhra Pradesh", Demand: 65, Risk: 22, Category: "FMCG", X: 215, Y: 410, Size: 34},
	{ID: "KL", Name: "Kerala", Demand: 70, Risk: 18, Category: "Tourism", X: 170, Y: 510, Size: 28},
	{ID: "TS", Name: "Telangana", Demand: 82, Risk: 19, Category: "IT Services", X: 200, Y: 380, Size: 30},
	{ID: "MP", Name: "Madhya Pradesh", Demand: 60, Risk: 32, Category: "Agriculture", X: 210, Y: 280, Size: 42},
	{ID: "PB", Name: "Punjab", Demand: 64, Risk: 27, Category: "Agriculture", X: 190, Y: 150, Size: 28},
	{ID: "HR", Name: "Haryana", Demand: 70, Risk: 24, Category: "Automotive", X: 205, Y: 175, Size: 24},
}

func init() {
	for i := range fixture {
		fixture[i].MonthlyVolume = fixture[i].Demand*1500 + fixture[i].Size*250
	}
}

// Regions returns a copy of the static region fixture.
func Regions() []Region {
	out := make([]Region, len(fixture))
	copy(out, fixture)
	return out
}
