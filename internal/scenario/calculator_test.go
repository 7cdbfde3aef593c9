package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Defaults(t *testing.T) {
	out := Compute(DefaultInputs())

	assert.Equal(t, 108000.0, out.ProjectedRevenue)
	// 108000*0.35 - 50*80
	assert.InDelta(t, 33800.0, out.ProjectedProfit, 1e-6)
	assert.Equal(t, 0.0, out.RiskVariance)
	assert.Equal(t, 96.0, out.ConfidencePercent)
}

func TestCompute_NegativeSlidersUseAbsoluteValues(t *testing.T) {
	out := Compute(Inputs{PriceChangePercent: -10, MarketingBudgetThousands: 0, InventoryShiftPercent: -20})

	assert.Equal(t, 93000.0, out.ProjectedRevenue)
	assert.InDelta(t, 32550.0, out.ProjectedProfit, 1e-6)
	assert.InDelta(t, 14.0, out.RiskVariance, 1e-9)
	assert.InDelta(t, 71.0, out.ConfidencePercent, 1e-9)
}

func TestCompute_ConfidenceFloorsAtSixty(t *testing.T) {
	out := Compute(Inputs{PriceChangePercent: 30, MarketingBudgetThousands: 200, InventoryShiftPercent: 50})

	assert.Equal(t, 153000.0, out.ProjectedRevenue)
	assert.InDelta(t, 153000*0.35-16000, out.ProjectedProfit, 1e-6)
	assert.InDelta(t, 39.0, out.RiskVariance, 1e-9)
	assert.Equal(t, 60.0, out.ConfidencePercent)
}

func TestCompute_RegionIsDecorative(t *testing.T) {
	a := Inputs{PriceChangePercent: 5, MarketingBudgetThousands: 75, InventoryShiftPercent: 10, Region: "Gujarat"}
	b := a
	b.Region = "Karnataka"

	assert.Equal(t, Compute(a), Compute(b))
}

func TestCompute_Deterministic(t *testing.T) {
	in := Inputs{PriceChangePercent: 7, MarketingBudgetThousands: 35, InventoryShiftPercent: -15}
	assert.Equal(t, Compute(in), Compute(in))
}

func TestDeriveScenarios_Scaling(t *testing.T) {
	for _, in := range []Inputs{
		DefaultInputs(),
		{PriceChangePercent: -30, MarketingBudgetThousands: 0, InventoryShiftPercent: 50},
		{PriceChangePercent: 12, MarketingBudgetThousands: 185, InventoryShiftPercent: -5},
	} {
		out := Compute(in)
		sc := DeriveScenarios(out)

		assert.Equal(t, out.ProjectedRevenue, sc.Base.Revenue)
		assert.Equal(t, out.ProjectedProfit, sc.Base.Profit)
		assert.InDelta(t, 1.15*sc.Base.Revenue, sc.Optimistic.Revenue, 1e-6)
		assert.InDelta(t, 1.25*sc.Base.Profit, sc.Optimistic.Profit, 1e-6)
		assert.InDelta(t, 0.85*sc.Base.Revenue, sc.Conservative.Revenue, 1e-6)
		assert.InDelta(t, 0.80*sc.Base.Profit, sc.Conservative.Profit, 1e-6)
	}
}

func TestDeriveScenarios_Names(t *testing.T) {
	sc := DeriveScenarios(Outputs{})
	assert.Equal(t, "Conservative", sc.Conservative.Name)
	assert.Equal(t, "Base", sc.Base.Name)
	assert.Equal(t, "Optimistic", sc.Optimistic.Name)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultInputs().Validate())
	assert.NoError(t, Inputs{PriceChangePercent: -30, MarketingBudgetThousands: 200, InventoryShiftPercent: -50, Region: "Uttar Pradesh"}.Validate())

	bad := []Inputs{
		{PriceChangePercent: 31, MarketingBudgetThousands: 50, Region: "Gujarat"},
		{PriceChangePercent: -31, MarketingBudgetThousands: 50, Region: "Gujarat"},
		{MarketingBudgetThousands: -5, Region: "Gujarat"},
		{MarketingBudgetThousands: 205, Region: "Gujarat"},
		{MarketingBudgetThousands: 52, Region: "Gujarat"},
		{MarketingBudgetThousands: 50, InventoryShiftPercent: 55, Region: "Gujarat"},
		{MarketingBudgetThousands: 50, InventoryShiftPercent: 7, Region: "Gujarat"},
		{MarketingBudgetThousands: 50, Region: "Kerala"},
		{MarketingBudgetThousands: 50, Region: ""},
	}
	for _, in := range bad {
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput, "%+v", in)
	}
}
