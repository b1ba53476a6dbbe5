// Package constants provides shared constants for the refinance engine.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Scenario search defaults
const (
	// MinTermYears is the shortest refinancing term ever offered
	MinTermYears = 5

	// DefaultMaxTermYears is the term ceiling applied when the borrower's
	// age is unknown
	DefaultMaxTermYears = 35

	// DefaultAffordabilityMultiplier bounds the shortest financially
	// reasonable term: the payment at that term may not exceed the current
	// payment times this factor
	DefaultAffordabilityMultiplier = 2.5

	// DefaultMinMonthlyReduction is the smallest monthly saving considered
	// worth presenting as a full set of scenarios
	DefaultMinMonthlyReduction = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size
	// for calculation requests (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024
)
