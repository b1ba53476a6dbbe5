// Package validation checks candidate refinance offers against regulatory
// limits. It is reused as a constraint oracle by the scenario calculator
// and knows nothing about scenarios themselves.
package validation

import (
	"fmt"

	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/format"
	"github.com/mortgagepulse/refinance-engine/pkg/rates"
)

// LoanParams describes one candidate refinance to validate. Age 0 means the
// borrower's age is unknown, which relaxes the age-based term cap to the
// default ceiling. PropertyValue 0 skips the loan-to-value check.
type LoanParams struct {
	TotalBalance   float64
	MonthlyPayment float64
	TermYears      int
	Age            int
	PropertyValue  float64
}

// Result reports whether the candidate complies with the regulations, the
// ordered list of violated constraints, and the binding maximum term for
// this borrower/property combination.
type Result struct {
	IsValid        bool
	Violations     []string
	MaxAllowedTerm int
}

// ValidateLoanParams runs every applicable regulatory check; checks do not
// short-circuit, so all violations are reported together.
func ValidateLoanParams(reg rates.Regulations, p LoanParams) Result {
	ageBasedMaxTerm := constants.DefaultMaxTermYears
	if p.Age > 0 {
		ageBasedMaxTerm = reg.MaxBorrowerAge - p.Age
	}

	maxAllowedTerm := reg.MaxLoanTermYears
	if ageBasedMaxTerm < maxAllowedTerm {
		maxAllowedTerm = ageBasedMaxTerm
	}

	var violations []string

	if p.TermYears > maxAllowedTerm {
		violations = append(violations, fmt.Sprintf(
			"term of %d years exceeds the maximum allowed term of %d years",
			p.TermYears, maxAllowedTerm))
	}

	if p.MonthlyPayment < reg.MinMonthlyPayment {
		violations = append(violations, fmt.Sprintf(
			"monthly payment %s is below the minimum of %s",
			format.Currency(p.MonthlyPayment), format.Currency(reg.MinMonthlyPayment)))
	}

	if p.PropertyValue > 0 {
		ltv := p.TotalBalance / p.PropertyValue
		if ltv > reg.MaxLtvRatio {
			violations = append(violations, fmt.Sprintf(
				"loan-to-value ratio %.1f%% exceeds the maximum of %.1f%%",
				ltv*100, reg.MaxLtvRatio*100))
		}
	}

	return Result{
		IsValid:        len(violations) == 0,
		Violations:     violations,
		MaxAllowedTerm: maxAllowedTerm,
	}
}
