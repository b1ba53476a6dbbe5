package scenarios

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/mortgagepulse/refinance-engine/pkg/rates"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	model, err := rates.NewModel(rates.DefaultParameters())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return NewCalculator(model, Options{}, zap.NewNop())
}

func TestCalculateStandardRefinance(t *testing.T) {
	calc := newTestCalculator(t)

	result := calc.Calculate(LoanInput{
		MortgageBalance:        1200000,
		CurrentMortgagePayment: 6500,
		Age:                    35,
		PropertyValue:          2500000,
	})

	if !result.HasValidScenarios {
		t.Fatalf("expected valid scenarios, got special case %q", result.SpecialCase)
	}
	if result.SpecialCase != SpecialCaseNone {
		t.Fatalf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseNone)
	}
	if result.Minimum == nil || result.Middle == nil || result.Maximum == nil {
		t.Fatalf("expected all three scenarios populated, got %+v", result)
	}

	// With the default rate table the blended rate is 4.5%, which puts the
	// first qualifying term at 27 years against the 30-year regulatory cap.
	if result.Minimum.Years != 27 || result.Middle.Years != 29 || result.Maximum.Years != 30 {
		t.Errorf("scenario years = %d/%d/%d, expected 27/29/30",
			result.Minimum.Years, result.Middle.Years, result.Maximum.Years)
	}

	for _, s := range result.Scenarios() {
		if s.MonthlyPayment >= 6500 {
			t.Errorf("%d-year payment %.2f is not below the current payment", s.Years, s.MonthlyPayment)
		}
		if s.MonthlyReduction <= 0 {
			t.Errorf("%d-year reduction %.2f should be positive", s.Years, s.MonthlyReduction)
		}
		if s.TotalSavings <= 0 {
			t.Errorf("%d-year total savings %.2f should be positive", s.Years, s.TotalSavings)
		}
	}
}

func TestCalculateScenarioOrdering(t *testing.T) {
	calc := newTestCalculator(t)

	inputs := []LoanInput{
		{MortgageBalance: 1200000, CurrentMortgagePayment: 6500, Age: 35, PropertyValue: 2500000},
		{MortgageBalance: 800000, OtherLoansBalance: 150000, CurrentMortgagePayment: 4500,
			CurrentOtherLoansPayment: 2600, Age: 42, PropertyValue: 2000000},
		{OtherLoansBalance: 300000, CurrentOtherLoansPayment: 5000, Age: 40, PropertyValue: 1200000},
		{MortgageBalance: 500000, CurrentMortgagePayment: 4200, PropertyValue: 1500000},
	}

	for _, input := range inputs {
		result := calc.Calculate(input)
		if result.SpecialCase != SpecialCaseNone {
			continue
		}

		if result.Minimum.Years > result.Middle.Years || result.Middle.Years > result.Maximum.Years {
			t.Errorf("years not ordered for input %+v: %d/%d/%d",
				input, result.Minimum.Years, result.Middle.Years, result.Maximum.Years)
		}
		current := input.CurrentPayment()
		for _, s := range result.Scenarios() {
			if s.MonthlyPayment >= current {
				t.Errorf("%d-year payment %.2f not strictly below current %.2f for input %+v",
					s.Years, s.MonthlyPayment, current, input)
			}
		}
	}
}

func TestCalculateNoBaselinePayment(t *testing.T) {
	calc := newTestCalculator(t)

	result := calc.Calculate(LoanInput{
		MortgageBalance: 1000000,
		PropertyValue:   2000000,
	})

	if result.SpecialCase != SpecialCaseNoSavings {
		t.Errorf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseNoSavings)
	}
	if result.HasValidScenarios || len(result.Scenarios()) != 0 {
		t.Errorf("no-savings result must not carry scenarios: %+v", result)
	}
}

func TestCalculateZeroBalances(t *testing.T) {
	calc := newTestCalculator(t)

	result := calc.Calculate(LoanInput{
		CurrentMortgagePayment: 5000,
	})

	if result.SpecialCase != SpecialCaseNoSavings {
		t.Errorf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseNoSavings)
	}
}

func TestCalculateNegativeBalancesClamped(t *testing.T) {
	calc := newTestCalculator(t)

	result := calc.Calculate(LoanInput{
		MortgageBalance:        -500000,
		OtherLoansBalance:      -20000,
		CurrentMortgagePayment: 4000,
	})

	if result.SpecialCase != SpecialCaseNoSavings {
		t.Errorf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseNoSavings)
	}
}

func TestCalculateAgeBoundary(t *testing.T) {
	calc := newTestCalculator(t)

	// Age 70 against a maximum borrower age of 75 caps the term at 5
	// years, where the payment on this balance far exceeds the baseline.
	result := calc.Calculate(LoanInput{
		MortgageBalance:        1200000,
		CurrentMortgagePayment: 6500,
		Age:                    70,
		PropertyValue:          2500000,
	})

	if result.SpecialCase != SpecialCaseNoSavings {
		t.Errorf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseNoSavings)
	}
}

func TestCalculateInsufficientSavings(t *testing.T) {
	calc := newTestCalculator(t)

	// A baseline barely above the best achievable payment: only the
	// 30-year term qualifies and it saves well under the threshold.
	result := calc.Calculate(LoanInput{
		MortgageBalance:        1200000,
		CurrentMortgagePayment: 6100,
		Age:                    35,
		PropertyValue:          2500000,
	})

	if result.SpecialCase != SpecialCaseInsufficientSavings {
		t.Fatalf("SpecialCase = %q, expected %q", result.SpecialCase, SpecialCaseInsufficientSavings)
	}
	if result.Minimum != nil || result.Middle != nil {
		t.Errorf("insufficient-savings result must only populate the maximum scenario: %+v", result)
	}
	if result.Maximum == nil {
		t.Fatal("expected maximum scenario to be populated")
	}
	if result.Maximum.MonthlyPayment >= 6100 {
		t.Errorf("maximum payment %.2f not below current payment", result.Maximum.MonthlyPayment)
	}
	if result.Maximum.MonthlyReduction >= 100 {
		t.Errorf("reduction %.2f should be below the usability threshold", result.Maximum.MonthlyReduction)
	}
}

func TestCalculateDropsNonCompliantScenarios(t *testing.T) {
	calc := newTestCalculator(t)

	// LTV of 100% against a 75% cap invalidates every derived scenario.
	result := calc.Calculate(LoanInput{
		MortgageBalance:        2000000,
		CurrentMortgagePayment: 12000,
		Age:                    35,
		PropertyValue:          2000000,
	})

	if result.HasValidScenarios {
		t.Errorf("expected no lawful scenarios, got %+v", result)
	}
	if len(result.Scenarios()) != 0 {
		t.Errorf("expected no scenarios populated, got %d", len(result.Scenarios()))
	}
}

func TestCalculateIdempotent(t *testing.T) {
	calc := newTestCalculator(t)

	input := LoanInput{
		MortgageBalance:          950000,
		OtherLoansBalance:        120000,
		CurrentMortgagePayment:   5200,
		CurrentOtherLoansPayment: 2100,
		Age:                      44,
		PropertyValue:            1900000,
	}

	first := calc.Calculate(input)
	second := calc.Calculate(input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Calculate is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCalculateHonorsConfiguredThreshold(t *testing.T) {
	model, err := rates.NewModel(rates.DefaultParameters())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}

	input := LoanInput{
		MortgageBalance:        1200000,
		CurrentMortgagePayment: 6500,
		Age:                    35,
		PropertyValue:          2500000,
	}

	// The default table saves roughly 420/month at the 30-year term; a
	// higher configured threshold reclassifies the same input.
	strict := NewCalculator(model, Options{MinMonthlyReduction: 1000}, nil)
	if result := strict.Calculate(input); result.SpecialCase != SpecialCaseInsufficientSavings {
		t.Errorf("SpecialCase = %q, expected %q under a 1000 threshold",
			result.SpecialCase, SpecialCaseInsufficientSavings)
	}

	lenient := NewCalculator(model, Options{MinMonthlyReduction: 10}, nil)
	if result := lenient.Calculate(input); result.SpecialCase != SpecialCaseNone {
		t.Errorf("SpecialCase = %q, expected %q under a 10 threshold", result.SpecialCase, SpecialCaseNone)
	}
}

func TestDefaultOptionsApplied(t *testing.T) {
	model, err := rates.NewModel(rates.DefaultParameters())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}

	calc := NewCalculator(model, Options{}, nil)
	if calc.opts.MinTermYears != 5 {
		t.Errorf("MinTermYears = %d, expected 5", calc.opts.MinTermYears)
	}
	if calc.opts.DefaultMaxTermYears != 35 {
		t.Errorf("DefaultMaxTermYears = %d, expected 35", calc.opts.DefaultMaxTermYears)
	}
	if calc.opts.AffordabilityMultiplier != 2.5 {
		t.Errorf("AffordabilityMultiplier = %v, expected 2.5", calc.opts.AffordabilityMultiplier)
	}
	if calc.opts.MinMonthlyReduction != 100 {
		t.Errorf("MinMonthlyReduction = %v, expected 100", calc.opts.MinMonthlyReduction)
	}
}
