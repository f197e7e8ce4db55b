package timelog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/curaflow/curaflow/pkg/allocation"
	"github.com/curaflow/curaflow/pkg/budget_type"
	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/curaflow/curaflow/pkg/shift"
	"github.com/curaflow/curaflow/pkg/staff"
)

// Costing is the priced breakdown of one shift.
type Costing struct {
	Segments    []shift.Segment
	Rates       rate.Rates
	Hours       decimal.Decimal
	HoursCost   decimal.Decimal
	MileageCost decimal.Decimal
	TotalCost   decimal.Decimal
}

// EffectiveHourlyRate is HoursCost spread evenly over the worked hours.
func (c Costing) EffectiveHourlyRate() decimal.Decimal {
	if c.Hours.IsZero() {
		return decimal.Zero
	}
	return c.HoursCost.Div(c.Hours)
}

// Coster classifies and prices a shift. It is shared between time log
// creation and compensation calculation so both always agree on cost.
type Coster struct {
	allocationRepo     allocation.AllocationRepo
	budgetTypeRepo     budget_type.BudgetTypeRepo
	classifier         *shift.Classifier
	resolver           *rate.Resolver
	overtimeMultiplier decimal.Decimal
}

func NewCoster(
	allocationRepo allocation.AllocationRepo,
	budgetTypeRepo budget_type.BudgetTypeRepo,
	classifier *shift.Classifier,
	resolver *rate.Resolver,
	overtimeMultiplier decimal.Decimal,
) *Coster {
	return &Coster{
		allocationRepo:     allocationRepo,
		budgetTypeRepo:     budgetTypeRepo,
		classifier:         classifier,
		resolver:           resolver,
		overtimeMultiplier: overtimeMultiplier,
	}
}

// Cost classifies the shift and resolves rates through the precedence chain
// for the given allocation (nil means no override and no budget type
// defaults). Classification and resolution errors make the shift
// unbillable; no cost is ever defaulted.
func (c *Coster) Cost(ctx context.Context, staffMember staff.Staff, allocationID *int, start, end time.Time, kilometers decimal.Decimal) (Costing, error) {
	segments, err := c.classifier.Classify(ctx, start, end)
	if err != nil {
		return Costing{}, err
	}

	override := rate.RateSet{}
	typeDefaults := rate.RateSet{}
	if allocationID != nil {
		alloc, err := c.allocationRepo.Get(ctx, *allocationID)
		if err != nil {
			return Costing{}, fmt.Errorf("failed to load allocation %d: %w", *allocationID, err)
		}
		budgetType, err := c.budgetTypeRepo.Get(ctx, alloc.BudgetTypeID)
		if err != nil {
			return Costing{}, fmt.Errorf("failed to load budget type %d: %w", alloc.BudgetTypeID, err)
		}
		override = alloc.OverrideRates()
		typeDefaults = budgetType.DefaultRates()
	}

	rates, err := c.resolver.Resolve(override, staffMember.DefaultRates(), typeDefaults)
	if err != nil {
		return Costing{}, err
	}

	hours := shift.HoursBetween(start.UTC(), end.UTC())
	hoursCost := shift.Price(segments, rates, c.overtimeMultiplier)
	mileageCost := kilometers.Mul(rates.Kilometer)
	return Costing{
		Segments:    segments,
		Rates:       rates,
		Hours:       hours,
		HoursCost:   hoursCost,
		MileageCost: mileageCost,
		TotalCost:   hoursCost.Add(mileageCost),
	}, nil
}

// OvertimeMultiplier exposes the configured multiplier for callers that
// break cost down per bucket.
func (c *Coster) OvertimeMultiplier() decimal.Decimal {
	return c.overtimeMultiplier
}
