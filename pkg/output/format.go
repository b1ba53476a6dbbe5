// Package output formats scenario results for terminal and file consumption.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/scenarios"
)

// ValidateFormat checks that the requested output format is supported.
func ValidateFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format %q, expected one of %s, %s, %s",
		format, constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON)
}

// Write renders the result in the requested format.
func Write(w io.Writer, format string, result scenarios.Result, blendedRate float64) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, result, blendedRate)
	case constants.OutputFormatCSV:
		return CsvFormat(w, result)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result, blendedRate)
	}
	return ValidateFormat(format)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result scenarios.Result, blendedRate float64) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "--- Refinance scenarios (blended rate %.2f%%) ---\n", blendedRate*100); err != nil {
		return err
	}

	switch result.SpecialCase {
	case scenarios.SpecialCaseNoSavings:
		_, err := fmt.Fprintf(w, "No refinance term produces a lower monthly payment.\n")
		return err
	case scenarios.SpecialCaseInsufficientSavings:
		if _, err := fmt.Fprintf(w, "Monthly savings are marginal; only the maximum term is shown.\n"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Scenario | Term     | Monthly Payment | Monthly Reduction | Total Savings\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "________ | ____     | _______________ | _________________ | _____________\n"); err != nil {
		return err
	}

	rows := []struct {
		label    string
		scenario *scenarios.Scenario
	}{
		{"Minimum", result.Minimum},
		{"Middle", result.Middle},
		{"Maximum", result.Maximum},
	}
	for _, row := range rows {
		if row.scenario == nil {
			continue
		}
		s := row.scenario
		if _, err := p.Fprintf(w, "%-8s | %2d years | $%.2f | $%.2f | $%.2f\n",
			row.label, s.Years, s.MonthlyPayment, s.MonthlyReduction, s.TotalSavings); err != nil {
			return err
		}
	}

	return nil
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, result scenarios.Result) error {
	if _, err := fmt.Fprintf(w, `"scenario","years","monthlyPayment","monthlyReduction","totalSavings"`); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	rows := []struct {
		label    string
		scenario *scenarios.Scenario
	}{
		{"minimum", result.Minimum},
		{"middle", result.Middle},
		{"maximum", result.Maximum},
	}
	for _, row := range rows {
		if row.scenario == nil {
			continue
		}
		s := row.scenario
		if _, err := fmt.Fprintf(w, `"%s","%d","%.2f","%.2f","%.2f"`,
			row.label, s.Years, s.MonthlyPayment, s.MonthlyReduction, s.TotalSavings); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
	}

	return nil
}

// JSONFormat outputs the result as indented JSON.
func JSONFormat(w io.Writer, result scenarios.Result, blendedRate float64) error {
	payload := struct {
		scenarios.Result
		BlendedRate float64 `json:"blendedRate"`
	}{Result: result, BlendedRate: blendedRate}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// CsvString renders the CSV output as a string.
func CsvString(result scenarios.Result) string {
	var b strings.Builder
	_ = CsvFormat(&b, result)
	return b.String()
}
