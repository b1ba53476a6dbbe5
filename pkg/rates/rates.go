// Package rates defines the market rate parameters used by the refinance
// engine and computes blended interest rates for mixed debt balances.
package rates

import (
	"fmt"
)

// MortgageRates holds the published annual mortgage sub-rates as decimals.
type MortgageRates struct {
	FixedRate        float64 `yaml:"fixedRate" json:"fixedRate"`
	VariableUnlinked float64 `yaml:"variableUnlinked" json:"variableUnlinked"`
	VariableLinked   float64 `yaml:"variableLinked" json:"variableLinked"`
}

// OtherLoansRates holds the tiered annual rates for non-mortgage debt.
type OtherLoansRates struct {
	LowRate  float64 `yaml:"lowRate" json:"lowRate"`
	HighRate float64 `yaml:"highRate" json:"highRate"`
}

// Regulations holds the regulatory limits applied to any refinance offer.
type Regulations struct {
	MaxLoanTermYears  int     `yaml:"maxLoanTermYears" json:"maxLoanTermYears"`
	MaxBorrowerAge    int     `yaml:"maxBorrowerAge" json:"maxBorrowerAge"`
	MaxLtvRatio       float64 `yaml:"maxLtvRatio" json:"maxLtvRatio"`
	MinMonthlyPayment float64 `yaml:"minMonthlyPayment" json:"minMonthlyPayment"`
}

// Fees holds the one-time refinancing costs. Informational only; the
// scenario math does not subtract them.
type Fees struct {
	RefinancingFee float64 `yaml:"refinancingFee" json:"refinancingFee"`
	AppraisalFee   float64 `yaml:"appraisalFee" json:"appraisalFee"`
	LegalFees      float64 `yaml:"legalFees" json:"legalFees"`
}

// Simulator holds presentation hints for payment sliders.
type Simulator struct {
	PaymentRangePercent float64 `yaml:"paymentRangePercent" json:"paymentRangePercent"`
}

// RateParameters is the complete static rate table for one market. It is
// injected into the calculator; nothing in the engine reads a global table.
type RateParameters struct {
	MortgageRates   MortgageRates   `yaml:"mortgageRates" json:"mortgageRates"`
	OtherLoansRates OtherLoansRates `yaml:"otherLoansRates" json:"otherLoansRates"`
	Regulations     Regulations     `yaml:"regulations" json:"regulations"`
	Fees            Fees            `yaml:"fees" json:"fees"`
	Simulator       Simulator       `yaml:"simulator" json:"simulator"`
}

// DefaultParameters returns the built-in rate table. Deployments normally
// override these from the configuration file.
func DefaultParameters() RateParameters {
	return RateParameters{
		MortgageRates: MortgageRates{
			FixedRate:        0.045,
			VariableUnlinked: 0.050,
			VariableLinked:   0.040,
		},
		OtherLoansRates: OtherLoansRates{
			LowRate:  0.08,
			HighRate: 0.12,
		},
		Regulations: Regulations{
			MaxLoanTermYears:  30,
			MaxBorrowerAge:    75,
			MaxLtvRatio:       0.75,
			MinMonthlyPayment: 500,
		},
		Fees: Fees{
			RefinancingFee: 1500,
			AppraisalFee:   2000,
			LegalFees:      5000,
		},
		Simulator: Simulator{
			PaymentRangePercent: 0.30,
		},
	}
}

// Validate checks the rate table invariants: all rates are decimals in
// [0,1), the LTV cap is in (0,1], and the term/age bounds are positive.
func (p RateParameters) Validate() error {
	decimals := map[string]float64{
		"mortgageRates.fixedRate":        p.MortgageRates.FixedRate,
		"mortgageRates.variableUnlinked": p.MortgageRates.VariableUnlinked,
		"mortgageRates.variableLinked":   p.MortgageRates.VariableLinked,
		"otherLoansRates.lowRate":        p.OtherLoansRates.LowRate,
		"otherLoansRates.highRate":       p.OtherLoansRates.HighRate,
	}
	for name, rate := range decimals {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("%s must be a decimal rate in [0,1), got %v", name, rate)
		}
	}

	if p.Regulations.MaxLtvRatio <= 0 || p.Regulations.MaxLtvRatio > 1 {
		return fmt.Errorf("regulations.maxLtvRatio must be in (0,1], got %v", p.Regulations.MaxLtvRatio)
	}
	if p.Regulations.MaxLoanTermYears <= 0 {
		return fmt.Errorf("regulations.maxLoanTermYears must be positive, got %d", p.Regulations.MaxLoanTermYears)
	}
	if p.Regulations.MaxBorrowerAge <= 0 {
		return fmt.Errorf("regulations.maxBorrowerAge must be positive, got %d", p.Regulations.MaxBorrowerAge)
	}
	if p.Regulations.MinMonthlyPayment < 0 {
		return fmt.Errorf("regulations.minMonthlyPayment must not be negative, got %v", p.Regulations.MinMonthlyPayment)
	}

	return nil
}

// Model computes blended rates from a validated rate table. All methods are
// pure functions of the table and their arguments.
type Model struct {
	params RateParameters
}

// NewModel validates the parameters and returns a rate model over them.
func NewModel(params RateParameters) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate parameters: %w", err)
	}
	return &Model{params: params}, nil
}

// Parameters returns the rate table backing this model.
func (m *Model) Parameters() RateParameters {
	return m.params
}

// Regulations returns the regulatory limits from the rate table.
func (m *Model) Regulations() Regulations {
	return m.params.Regulations
}

// WeightedMortgageRate returns the blend of the three published mortgage
// sub-rates. Equal weighting is a fixed market convention, not user input.
func (m *Model) WeightedMortgageRate() float64 {
	r := m.params.MortgageRates
	return (r.FixedRate + r.VariableUnlinked + r.VariableLinked) / 3
}

// WeightedOtherLoansRate returns the conventional blend of the tiered
// other-loan rates: one third low, two thirds high.
func (m *Model) WeightedOtherLoansRate() float64 {
	r := m.params.OtherLoansRates
	return r.LowRate/3 + 2*r.HighRate/3
}

// BlendedRate returns a single effective annual rate for a mix of mortgage
// and other-loan balances, proportional to each balance's share of the
// total. A zero total balance returns WeightedMortgageRate; that is a
// degenerate-input convention, not a meaningful rate.
func (m *Model) BlendedRate(mortgageAmount, otherLoansAmount float64) float64 {
	total := mortgageAmount + otherLoansAmount
	if total == 0 {
		return m.WeightedMortgageRate()
	}
	return (mortgageAmount*m.WeightedMortgageRate() + otherLoansAmount*m.WeightedOtherLoansRate()) / total
}
