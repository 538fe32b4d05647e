// Package constants provides shared constants for the rebalance-simulator application.
package constants

// DateTimeLayout is the format expected for an optional projection start date and
// is also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// WeightTolerance is the absolute tolerance applied to the target weight sum.
	WeightTolerance = 0.01

	// TotalWeightPercent is the sum target weights must reach.
	TotalWeightPercent = 100.0

	// MinAnnualReturnPercent is the lowest annual return an asset may carry.
	MinAnnualReturnPercent = -100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultCurrency is the ISO code used when displaying amounts.
	DefaultCurrency = "USD"
)

// Defaults mirrored from the desktop form.
const (
	// DefaultPrincipal is the initial principal shown in a fresh form.
	DefaultPrincipal = 5000.0

	// DefaultYears is the default projection horizon.
	DefaultYears = 10

	// DefaultRebalanceMonths is the default rebalance period.
	DefaultRebalanceMonths = 12

	// MinYears and MaxYears bound the horizon accepted by the form.
	MinYears = 1
	MaxYears = 100

	// MinRebalanceMonths and MaxRebalanceMonths bound the rebalance period accepted by the form.
	MinRebalanceMonths = 1
	MaxRebalanceMonths = 120
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatMarkdown is a markdown summary rendered for the terminal
	OutputFormatMarkdown = "markdown"
)

// Chart constants
const (
	// ChartFormatPNG renders raster charts.
	ChartFormatPNG = "png"

	// ChartFormatSVG renders vector charts.
	ChartFormatSVG = "svg"

	// DefaultChartWidth and DefaultChartHeight size the rendered projection in pixels.
	DefaultChartWidth  = 900
	DefaultChartHeight = 540

	// OverlayPad is the pixel distance between a probed point and its overlay box.
	OverlayPad = 10.0
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxChartSessions caps the number of rendered charts kept for probing.
	DefaultMaxChartSessions = 64
)
