// Package scenario implements the what-if calculator behind the dashboard's
// simulation sliders. The formulas are illustrative, not a forecast model.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var ErrInvalidInput = errors.New("invalid scenario input")

// Regions selectable in the calculator.
var Regions = []string{"Maharashtra", "Delhi NCR", "Karnataka", "Tamil Nadu", "Gujarat", "Uttar Pradesh"}

// Inputs are the slider positions.
type Inputs struct {
	PriceChangePercent       int    `json:"priceChangePercent"`
	MarketingBudgetThousands int    `json:"marketingBudgetThousands"`
	InventoryShiftPercent    int    `json:"inventoryShiftPercent"`
	Region                   string `json:"region"`
}

// DefaultInputs is the slider state after a reset.
func DefaultInputs() Inputs {
	return Inputs{
		PriceChangePercent:       0,
		MarketingBudgetThousands: 50,
		InventoryShiftPercent:    0,
		Region:                   Regions[0],
	}
}

// Validate checks slider ranges, steps and the region name.
func (in Inputs) Validate() error {
	switch {
	case in.PriceChangePercent < -30 || in.PriceChangePercent > 30:
		return fmt.Errorf("%w: priceChangePercent %d outside [-30, 30]", ErrInvalidInput, in.PriceChangePercent)
	case in.MarketingBudgetThousands < 0 || in.MarketingBudgetThousands > 200:
		return fmt.Errorf("%w: marketingBudgetThousands %d outside [0, 200]", ErrInvalidInput, in.MarketingBudgetThousands)
	case in.MarketingBudgetThousands%5 != 0:
		return fmt.Errorf("%w: marketingBudgetThousands %d is not a multiple of 5", ErrInvalidInput, in.MarketingBudgetThousands)
	case in.InventoryShiftPercent < -50 || in.InventoryShiftPercent > 50:
		return fmt.Errorf("%w: inventoryShiftPercent %d outside [-50, 50]", ErrInvalidInput, in.InventoryShiftPercent)
	case in.InventoryShiftPercent%5 != 0:
		return fmt.Errorf("%w: inventoryShiftPercent %d is not a multiple of 5", ErrInvalidInput, in.InventoryShiftPercent)
	case !slices.Contains(Regions, in.Region):
		return fmt.Errorf("%w: unknown region %q", ErrInvalidInput, in.Region)
	}
	return nil
}

// Outputs are the derived metrics for one set of Inputs.
type Outputs struct {
	ProjectedRevenue  float64 `json:"projectedRevenue"`
	ProjectedProfit   float64 `json:"projectedProfit"`
	RiskVariance      float64 `json:"riskVariance"`
	ConfidencePercent float64 `json:"confidencePercent"`
}

// Compute applies the fixed linear formulas. Region does not take part;
// it only labels the result.
func Compute(in Inputs) Outputs {
	price := float64(in.PriceChangePercent)
	budget := float64(in.MarketingBudgetThousands)
	inventory := float64(in.InventoryShiftPercent)

	revenue := 98000 + price*500 + budget*200
	return Outputs{
		ProjectedRevenue:  revenue,
		ProjectedProfit:   revenue*0.35 - budget*80,
		RiskVariance:      math.Abs(price)*0.8 + math.Abs(inventory)*0.3,
		ConfidencePercent: math.Max(60, 96-math.Abs(price)*1.5-math.Abs(inventory)*0.5),
	}
}

// Projection is revenue and profit under one named scenario.
type Projection struct {
	Name    string  `json:"scenario"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Scenarios holds the three variants derived from a base projection.
type Scenarios struct {
	Conservative Projection `json:"conservative"`
	Base         Projection `json:"base"`
	Optimistic   Projection `json:"optimistic"`
}

// DeriveScenarios scales the base projection by fixed multipliers.
func DeriveScenarios(out Outputs) Scenarios {
	return Scenarios{
		Conservative: Projection{Name: "Conservative", Revenue: out.ProjectedRevenue * 0.85, Profit: out.ProjectedProfit * 0.8},
		Base:         Projection{Name: "Base", Revenue: out.ProjectedRevenue, Profit: out.ProjectedProfit},
		Optimistic:   Projection{Name: "Optimistic", Revenue: out.ProjectedRevenue * 1.15, Profit: out.ProjectedProfit * 1.25},
	}
}
