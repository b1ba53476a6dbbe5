// Package annuity provides the standard amortization math used by the
// refinance engine.
package annuity

import (
	"math"

	"github.com/mortgagepulse/refinance-engine/pkg/constants"
)

// MonthlyPayment calculates the fixed monthly payment for a fully
// amortizing loan using the standard annuity formula. The annual rate is a
// decimal (0.045 for 4.5%). Results are unrounded; callers round for
// display only.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	if principal <= 0 || years <= 0 {
		// No loan, no payment.
		return 0
	}

	termMonths := years * constants.MonthsPerYear
	if annualRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	monthlyRate := annualRate / constants.MonthsPerYear
	power := math.Pow(1.00+monthlyRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * monthlyRate / discountFactor
}

// MinTermMonths returns the smallest (fractional) number of monthly
// payments for which the annuity payment on principal stays at or below
// maxPayment. Inverse of the annuity formula; maxPayment must be positive.
func MinTermMonths(principal, annualRate, maxPayment float64) float64 {
	if principal <= 0 || maxPayment <= 0 {
		return 0
	}

	if annualRate == 0 {
		return principal / maxPayment
	}

	monthlyRate := annualRate / constants.MonthsPerYear
	return math.Log(1+principal*monthlyRate/maxPayment) / math.Log(1+monthlyRate)
}

// TotalPaid returns the total amount paid over the life of a loan with the
// given monthly payment and term.
func TotalPaid(monthlyPayment float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	return monthlyPayment * float64(years) * constants.MonthsPerYear
}
