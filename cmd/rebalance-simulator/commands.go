package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/iwvelando/rebalance-simulator/internal/chart"
	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/internal/optimizer"
	"github.com/iwvelando/rebalance-simulator/internal/report"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/format"
	"github.com/iwvelando/rebalance-simulator/pkg/output"
	"github.com/iwvelando/rebalance-simulator/pkg/validation"
	"go.uber.org/zap"
)

// commonFlags are shared by every command that reads a simulation config.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	f.StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// load reads the configuration, builds the logger and reports validation warnings.
func (c *commonFlags) load() (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(c.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", c.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, c.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return conf, logger, nil
}

// execute runs fn with a loaded configuration and maps its error to an exit status.
func (c *commonFlags) execute(name string, fn func(*zap.Logger, *config.Configuration) error) subcommands.ExitStatus {
	conf, logger, err := c.load()
	if err != nil {
		fatalf(fmt.Sprintf("%s failed", name), err)
		return subcommands.ExitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := fn(logger, conf); err != nil {
		logger.Error(name+" failed",
			zap.String("op", "main."+name),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type simulateCmd struct {
	commonFlags
	outputFormat string
	stride       int
	style        string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "project the portfolio and print the results" }
func (*simulateCmd) Usage() string {
	return `simulate [-config <file>] [-output-format pretty|csv|markdown] [-stride <months>]

  Runs the rebalancing simulation described by the configuration file and
  prints the projected total and cumulative contribution.
`
}

func (p *simulateCmd) SetFlags(f *flag.FlagSet) {
	p.register(f)
	f.StringVar(&p.outputFormat, "output-format", "", "type of output override: pretty, csv, markdown")
	f.IntVar(&p.stride, "stride", constants.MonthsPerYear, "months between printed rows")
	f.StringVar(&p.style, "style", "", "markdown style (dark, light, notty); detected when empty")
}

func (p *simulateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.execute(p.Name(), func(logger *zap.Logger, conf *config.Configuration) error {
		return p.run(logger, conf, os.Stdout)
	})
}

func (p *simulateCmd) run(logger *zap.Logger, conf *config.Configuration, w io.Writer) error {
	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if p.outputFormat != "" {
		outputFormat = p.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}
	return writeForecast(w, results, outputFormat, p.stride, p.style)
}

func writeForecast(w io.Writer, results forecast.Forecast, outputFormat string, stride int, style string) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		output.CsvFormat(w, results, stride)
	case constants.OutputFormatMarkdown:
		return output.MarkdownFormat(w, results, stride, style)
	default:
		output.PrettyFormat(w, results, stride)
	}
	return nil
}

type optimizeCmd struct {
	commonFlags
	outputFormat string
	stride       int
}

func (*optimizeCmd) Name() string { return "optimize" }
func (*optimizeCmd) Synopsis() string {
	return "solve for the contribution or principal that reaches a target value"
}
func (*optimizeCmd) Usage() string {
	return `optimize [-config <file>] [-output-format pretty|csv|markdown]

  Runs the optimizer section of the configuration, prints the optimized value
  and the projection that uses it.
`
}

func (p *optimizeCmd) SetFlags(f *flag.FlagSet) {
	p.register(f)
	f.StringVar(&p.outputFormat, "output-format", "", "type of output override: pretty, csv, markdown")
	f.IntVar(&p.stride, "stride", constants.MonthsPerYear, "months between printed rows")
}

func (p *optimizeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.execute(p.Name(), func(logger *zap.Logger, conf *config.Configuration) error {
		return p.run(logger, conf, os.Stdout)
	})
}

func (p *optimizeCmd) run(logger *zap.Logger, conf *config.Configuration, w io.Writer) error {
	if conf.Optimizer == nil {
		return fmt.Errorf("configuration has no optimizer section")
	}
	outputFormat := conf.Output.Format
	if p.outputFormat != "" {
		outputFormat = p.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		return err
	}
	optimized, err := runner.Run()
	if err != nil {
		return err
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}
	optimized.Apply(&results)

	for _, summary := range optimized.Summaries {
		status := "reached"
		if !summary.Reached() {
			status = "not reached"
		}
		fmt.Fprintf(w, "Optimized %s: %s -> %s (target %s %s, final %s, %d iterations)\n",
			summary.Field,
			format.Currency(summary.Original),
			format.Currency(summary.Value),
			format.Currency(summary.Target),
			status,
			format.Currency(summary.Achieved),
			summary.Iterations,
		)
		for _, note := range summary.Notes {
			fmt.Fprintf(w, "  note: %s\n", note)
		}
	}
	fmt.Fprintln(w)

	return writeForecast(w, results, outputFormat, p.stride, "notty")
}

type chartCmd struct {
	commonFlags
	out    string
	format string
	width  int
	height int
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the projection chart to an image file" }
func (*chartCmd) Usage() string {
	return `chart [-config <file>] [-o <file>] [-format png|svg] [-width <px>] [-height <px>]

  Renders the total asset and contributed lines of the projection.
`
}

func (p *chartCmd) SetFlags(f *flag.FlagSet) {
	p.register(f)
	f.StringVar(&p.out, "o", "", "output file; defaults to projection.<format>")
	f.StringVar(&p.format, "format", "", "image format override: png, svg")
	f.IntVar(&p.width, "width", 0, "image width override in pixels")
	f.IntVar(&p.height, "height", 0, "image height override in pixels")
}

func (p *chartCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.execute(p.Name(), p.run)
}

func (p *chartCmd) run(logger *zap.Logger, conf *config.Configuration) error {
	opts := chart.Options{Width: conf.Chart.Width, Height: conf.Chart.Height, Format: conf.Chart.Format}
	if p.format != "" {
		opts.Format = p.format
	}
	if p.width > 0 {
		opts.Width = p.width
	}
	if p.height > 0 {
		opts.Height = p.height
	}
	if err := validation.ValidateChartFormat(opts.Format); err != nil {
		return err
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	out := p.out
	if out == "" {
		out = "projection." + opts.Format
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if _, err := chart.Render(file, results.Series, opts); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logger.Info("chart written",
		zap.String("op", "main.chart"),
		zap.String("file", out),
	)
	return nil
}

type reportCmd struct {
	commonFlags
	out    string
	stride int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write a PDF report of the projection" }
func (*reportCmd) Usage() string {
	return `report [-config <file>] [-o <file>] [-stride <months>]

  Writes the inputs, summary metrics, charts and projection table to a PDF.
  The optimizer section is applied first when present.
`
}

func (p *reportCmd) SetFlags(f *flag.FlagSet) {
	p.register(f)
	f.StringVar(&p.out, "o", "rebalance-report.pdf", "output file")
	f.IntVar(&p.stride, "stride", constants.MonthsPerYear, "months between table rows")
}

func (p *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return p.execute(p.Name(), p.run)
}

func (p *reportCmd) run(logger *zap.Logger, conf *config.Configuration) error {
	var optimized *optimizer.Result
	if conf.Optimizer != nil {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			return err
		}
		if optimized, err = runner.Run(); err != nil {
			return err
		}
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}
	if optimized != nil {
		optimized.Apply(&results)
	}

	pdf, err := report.Generate(logger, results, report.Options{Stride: p.stride})
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.out, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.out, err)
	}

	logger.Info("report written",
		zap.String("op", "main.report"),
		zap.String("file", p.out),
		zap.Int("bytes", len(pdf)),
	)
	return nil
}
