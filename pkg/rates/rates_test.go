package rates

import (
	"math"
	"testing"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	model, err := NewModel(DefaultParameters())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return model
}

func TestWeightedMortgageRate(t *testing.T) {
	model := newTestModel(t)

	expected := (0.045 + 0.050 + 0.040) / 3
	if got := model.WeightedMortgageRate(); math.Abs(got-expected) > 1e-12 {
		t.Errorf("WeightedMortgageRate() = %v, expected %v", got, expected)
	}
}

func TestWeightedOtherLoansRate(t *testing.T) {
	model := newTestModel(t)

	expected := 0.08/3 + 2*0.12/3
	if got := model.WeightedOtherLoansRate(); math.Abs(got-expected) > 1e-12 {
		t.Errorf("WeightedOtherLoansRate() = %v, expected %v", got, expected)
	}
}

func TestBlendedRate(t *testing.T) {
	model := newTestModel(t)

	tests := []struct {
		name             string
		mortgageAmount   float64
		otherLoansAmount float64
		expected         float64
	}{
		{"Mortgage only", 500000, 0, model.WeightedMortgageRate()},
		{"Other loans only", 0, 80000, model.WeightedOtherLoansRate()},
		{"Zero balances fall back to mortgage rate", 0, 0, model.WeightedMortgageRate()},
		{
			"Even split is the midpoint",
			100000, 100000,
			(model.WeightedMortgageRate() + model.WeightedOtherLoansRate()) / 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.BlendedRate(tt.mortgageAmount, tt.otherLoansAmount)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("BlendedRate(%v, %v) = %v, expected %v",
					tt.mortgageAmount, tt.otherLoansAmount, got, tt.expected)
			}
		})
	}
}

func TestBlendedRateProportional(t *testing.T) {
	model := newTestModel(t)

	// A heavier other-loans share must pull the blend toward the higher rate.
	light := model.BlendedRate(900000, 100000)
	heavy := model.BlendedRate(100000, 900000)

	if light >= heavy {
		t.Errorf("blend should increase with other-loans share: light=%v heavy=%v", light, heavy)
	}
	if light < model.WeightedMortgageRate() || heavy > model.WeightedOtherLoansRate() {
		t.Errorf("blend must stay between component rates: light=%v heavy=%v", light, heavy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RateParameters)
		wantErr bool
	}{
		{"Defaults are valid", func(p *RateParameters) {}, false},
		{"Rate of 1 rejected", func(p *RateParameters) { p.MortgageRates.FixedRate = 1.0 }, true},
		{"Negative rate rejected", func(p *RateParameters) { p.OtherLoansRates.HighRate = -0.01 }, true},
		{"Percent-style rate rejected", func(p *RateParameters) { p.MortgageRates.VariableLinked = 4.5 }, true},
		{"LTV above 1 rejected", func(p *RateParameters) { p.Regulations.MaxLtvRatio = 1.5 }, true},
		{"Zero LTV rejected", func(p *RateParameters) { p.Regulations.MaxLtvRatio = 0 }, true},
		{"Zero max term rejected", func(p *RateParameters) { p.Regulations.MaxLoanTermYears = 0 }, true},
		{"Zero max age rejected", func(p *RateParameters) { p.Regulations.MaxBorrowerAge = 0 }, true},
		{"Negative minimum payment rejected", func(p *RateParameters) { p.Regulations.MinMonthlyPayment = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParameters()
			tt.mutate(&params)

			err := params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestNewModelRejectsInvalidParameters(t *testing.T) {
	params := DefaultParameters()
	params.Regulations.MaxLtvRatio = 2.0

	if _, err := NewModel(params); err == nil {
		t.Error("NewModel() expected error for invalid parameters")
	}
}
