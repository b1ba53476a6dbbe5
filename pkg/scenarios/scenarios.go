// Package scenarios derives bounded refinancing scenarios from a borrower's
// current debt and payment state. The calculator is pure: identical inputs
// always produce identical results, and degenerate input reduces to a
// special-case classification rather than an error.
package scenarios

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mortgagepulse/refinance-engine/pkg/annuity"
	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/mathutil"
	"github.com/mortgagepulse/refinance-engine/pkg/rates"
	"github.com/mortgagepulse/refinance-engine/pkg/validation"
)

// LoanInput is the borrower's current debt/payment/asset state. Constructed
// fresh per calculation; the engine never persists it. Age 0 means unknown,
// which relaxes the age-based term cap to the default ceiling.
type LoanInput struct {
	MortgageBalance          float64 `json:"mortgageBalance"`
	OtherLoansBalance        float64 `json:"otherLoansBalance"`
	CurrentMortgagePayment   float64 `json:"currentMortgagePayment"`
	CurrentOtherLoansPayment float64 `json:"currentOtherLoansPayment"`
	Age                      int     `json:"age,omitempty"`
	PropertyValue            float64 `json:"propertyValue"`
}

// CurrentPayment returns the borrower's combined monthly obligation today.
func (in LoanInput) CurrentPayment() float64 {
	return in.CurrentMortgagePayment + in.CurrentOtherLoansPayment
}

// Scenario is one candidate refinancing outcome at a specific term length.
type Scenario struct {
	Years            int     `json:"years"`
	MonthlyPayment   float64 `json:"monthlyPayment"`
	MonthlyReduction float64 `json:"monthlyReduction"`
	TotalSavings     float64 `json:"totalSavings"`
}

// SpecialCase classifies outcomes where the normal three-scenario result
// cannot be produced.
type SpecialCase string

const (
	// SpecialCaseNone indicates a normal result with all three scenarios.
	SpecialCaseNone SpecialCase = "none"

	// SpecialCaseNoSavings indicates no feasible term reduces the payment
	// at all, or there is no baseline payment to undercut.
	SpecialCaseNoSavings SpecialCase = "no-mortgage-savings"

	// SpecialCaseInsufficientSavings indicates a reduction exists but is
	// too small to justify more than the maximum-term scenario.
	SpecialCaseInsufficientSavings SpecialCase = "insufficient-savings"
)

// Result is the outcome of one calculation.
//
// Invariants: SpecialCaseNoSavings populates no scenarios;
// SpecialCaseInsufficientSavings populates at most Maximum; otherwise all
// three are populated (unless a derived scenario failed regulatory
// validation and was dropped) with Minimum.Years <= Middle.Years <=
// Maximum.Years and every payment strictly below the current payment.
type Result struct {
	HasValidScenarios bool        `json:"hasValidScenarios"`
	SpecialCase       SpecialCase `json:"specialCase"`
	Minimum           *Scenario   `json:"minimumScenario,omitempty"`
	Middle            *Scenario   `json:"middleScenario,omitempty"`
	Maximum           *Scenario   `json:"maximumScenario,omitempty"`
}

// Scenarios returns the populated scenarios in minimum/middle/maximum order.
func (r Result) Scenarios() []Scenario {
	var out []Scenario
	for _, s := range []*Scenario{r.Minimum, r.Middle, r.Maximum} {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Options tunes the scenario search. Zero values fall back to the package
// defaults, so Options{} is a valid configuration.
type Options struct {
	// MinTermYears is the shortest term ever offered.
	MinTermYears int `yaml:"minTermYears"`

	// DefaultMaxTermYears caps the term when the borrower's age is unknown.
	DefaultMaxTermYears int `yaml:"defaultMaxTermYears"`

	// AffordabilityMultiplier caps the shortest financially reasonable
	// term: its payment may not exceed the current payment times this.
	AffordabilityMultiplier float64 `yaml:"affordabilityMultiplier"`

	// MinMonthlyReduction is the smallest monthly saving worth presenting
	// as a full set of scenarios.
	MinMonthlyReduction float64 `yaml:"minMonthlyReduction"`
}

// DefaultOptions returns the standard search bounds.
func DefaultOptions() Options {
	return Options{
		MinTermYears:            constants.MinTermYears,
		DefaultMaxTermYears:     constants.DefaultMaxTermYears,
		AffordabilityMultiplier: constants.DefaultAffordabilityMultiplier,
		MinMonthlyReduction:     constants.DefaultMinMonthlyReduction,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.MinTermYears <= 0 {
		o.MinTermYears = defaults.MinTermYears
	}
	if o.DefaultMaxTermYears <= 0 {
		o.DefaultMaxTermYears = defaults.DefaultMaxTermYears
	}
	if o.AffordabilityMultiplier <= 0 {
		o.AffordabilityMultiplier = defaults.AffordabilityMultiplier
	}
	if o.MinMonthlyReduction <= 0 {
		o.MinMonthlyReduction = defaults.MinMonthlyReduction
	}
	return o
}

// Calculator derives refinancing scenarios against one rate table. It holds
// no mutable state; a single instance may be shared across goroutines.
type Calculator struct {
	model  *rates.Model
	opts   Options
	logger *zap.Logger
}

// NewCalculator creates a calculator over the given rate model.
func NewCalculator(model *rates.Model, opts Options, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		model:  model,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// BlendedRate returns the effective annual rate the calculator applies to
// this input's balances.
func (c *Calculator) BlendedRate(input LoanInput) float64 {
	return c.model.BlendedRate(math.Max(input.MortgageBalance, 0), math.Max(input.OtherLoansBalance, 0))
}

// RateParameters returns the rate table backing this calculator.
func (c *Calculator) RateParameters() rates.RateParameters {
	return c.model.Parameters()
}

// Regulations returns the regulatory limits backing this calculator.
func (c *Calculator) Regulations() rates.Regulations {
	return c.model.Regulations()
}

// Calculate determines whether refinancing can lower the borrower's total
// monthly payment and, if so, derives the minimum/middle/maximum term
// scenarios. Abnormal conditions are expressed as data, never as errors.
func (c *Calculator) Calculate(input LoanInput) Result {
	mortgage := math.Max(input.MortgageBalance, 0)
	otherLoans := math.Max(input.OtherLoansBalance, 0)
	totalAmount := mortgage + otherLoans
	currentPayment := input.CurrentPayment()

	if !mathutil.IsPositive(totalAmount) || !mathutil.IsPositive(currentPayment) {
		// Nothing to refinance, or no baseline payment to undercut.
		return Result{SpecialCase: SpecialCaseNoSavings}
	}

	weightedRate := c.model.BlendedRate(mortgage, otherLoans)
	reg := c.model.Regulations()

	maxYearsByAge := c.opts.DefaultMaxTermYears
	if input.Age > 0 {
		maxYearsByAge = reg.MaxBorrowerAge - input.Age
	}
	absMaxYears := reg.MaxLoanTermYears
	if maxYearsByAge < absMaxYears {
		absMaxYears = maxYearsByAge
	}

	maxReasonablePayment := currentPayment * c.opts.AffordabilityMultiplier
	minPayments := annuity.MinTermMonths(totalAmount, weightedRate, maxReasonablePayment)
	minYearsFinancial := int(math.Ceil(minPayments / constants.MonthsPerYear))
	if minYearsFinancial < c.opts.MinTermYears {
		minYearsFinancial = c.opts.MinTermYears
	}

	// Payment is monotonically decreasing in term length, so an ascending
	// scan finds the minimal qualifying term. The range is at most a few
	// dozen years, so no closed-form solve is needed, and keeping the scan
	// lets each step be re-checked against the validator if fee structures
	// ever make reductions non-monotonic.
	minYears := 0
	for year := minYearsFinancial; year <= absMaxYears; year++ {
		if annuity.MonthlyPayment(totalAmount, weightedRate, year) < currentPayment {
			minYears = year
			break
		}
	}
	if minYears == 0 {
		c.logger.Debug(fmt.Sprintf("no qualifying term in [%d,%d] beats current payment %.2f",
			minYearsFinancial, absMaxYears, currentPayment),
			zap.String("op", "scenarios.Calculate"),
		)
		return Result{SpecialCase: SpecialCaseNoSavings}
	}

	if minYears < c.opts.MinTermYears {
		minYears = c.opts.MinTermYears
	}
	maxYears := absMaxYears
	if maxYears < minYears {
		maxYears = minYears
	}

	maxTermScenario := c.buildScenario(totalAmount, weightedRate, maxYears, currentPayment)
	if maxTermScenario.MonthlyReduction < c.opts.MinMonthlyReduction {
		// Even the longest term saves less than the usability threshold;
		// surface only the maximum scenario.
		result := Result{SpecialCase: SpecialCaseInsufficientSavings}
		if c.scenarioComplies(input, totalAmount, maxTermScenario) {
			result.Maximum = &maxTermScenario
			result.HasValidScenarios = true
		}
		return result
	}

	middleYears := int(math.Round(float64(minYears+maxYears) / 2))

	result := Result{SpecialCase: SpecialCaseNone}
	for _, candidate := range []struct {
		years int
		slot  **Scenario
	}{
		{minYears, &result.Minimum},
		{middleYears, &result.Middle},
		{maxYears, &result.Maximum},
	} {
		scenario := c.buildScenario(totalAmount, weightedRate, candidate.years, currentPayment)
		if !c.scenarioComplies(input, totalAmount, scenario) {
			c.logger.Debug(fmt.Sprintf("dropping %d-year scenario failing regulatory validation", candidate.years),
				zap.String("op", "scenarios.Calculate"),
			)
			continue
		}
		s := scenario
		*candidate.slot = &s
	}

	result.HasValidScenarios = result.Minimum != nil || result.Middle != nil || result.Maximum != nil
	if !result.HasValidScenarios {
		// Every derived scenario violated a regulatory constraint, so there
		// is no lawful offer to present.
		return Result{SpecialCase: SpecialCaseNoSavings}
	}
	return result
}

func (c *Calculator) buildScenario(totalAmount, weightedRate float64, years int, currentPayment float64) Scenario {
	payment := annuity.MonthlyPayment(totalAmount, weightedRate, years)
	reduction := currentPayment - payment
	return Scenario{
		Years:            years,
		MonthlyPayment:   payment,
		MonthlyReduction: reduction,
		TotalSavings:     annuity.TotalPaid(reduction, years),
	}
}

func (c *Calculator) scenarioComplies(input LoanInput, totalAmount float64, s Scenario) bool {
	check := validation.ValidateLoanParams(c.model.Regulations(), validation.LoanParams{
		TotalBalance:   totalAmount,
		MonthlyPayment: s.MonthlyPayment,
		TermYears:      s.Years,
		Age:            input.Age,
		PropertyValue:  input.PropertyValue,
	})
	return check.IsValid
}
