// Package report renders a projection as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/rebalance-simulator/internal/chart"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	formatutil "github.com/iwvelando/rebalance-simulator/pkg/format"
	"go.uber.org/zap"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// Options controls report content.
type Options struct {
	// Stride is the number of months between table rows; zero means yearly.
	Stride int
	// Generated is stamped on the title block; zero means now.
	Generated time.Time
}

type pdfReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	fc  forecast.Forecast
}

// Generate renders the forecast with its chart, allocation and a projection table.
func Generate(logger *zap.Logger, fc forecast.Forecast, opts Options) ([]byte, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stride <= 0 {
		opts.Stride = constants.MonthsPerYear
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	var projection bytes.Buffer
	if _, err := chart.Render(&projection, fc.Series, chart.Options{Title: fc.Name}); err != nil {
		return nil, fmt.Errorf("report chart: %w", err)
	}
	allocation, err := chart.RenderAllocation(fc.Input.Assets, 600, 400)
	if err != nil {
		logger.Warn("allocation chart left out of report",
			zap.String("op", "report.Generate"),
			zap.Error(err),
		)
	}

	r := &pdfReport{pdf: fpdf.New("P", "mm", "A4", ""), fc: fc}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle(fc.Name, true)

	r.addSummaryPage(opts.Generated, projection.Bytes(), allocation)
	r.addProjectionTable(opts.Stride)

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	logger.Debug("report generated",
		zap.String("op", "report.Generate"),
		zap.String("name", fc.Name),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func (r *pdfReport) addSummaryPage(generated time.Time, projection, allocation []byte) {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.tr(r.fc.Name), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(4)

	in := r.fc.Input
	m := r.fc.Metrics
	r.drawSectionHeader("Inputs")
	r.keyValue("Principal", formatutil.Currency(in.Principal))
	r.keyValue("Horizon", fmt.Sprintf("%d years", in.Years))
	r.keyValue("Rebalance period", fmt.Sprintf("%d months", in.RebalanceMonths))
	r.keyValue("Contribution per rebalance", formatutil.Currency(in.ContributionPerRebalance))
	for _, asset := range in.Assets {
		r.keyValue(asset.Name, fmt.Sprintf("%.2f%% return, %.2f%% target", asset.AnnualReturnPercent, asset.TargetWeightPercent))
	}
	r.pdf.Ln(3)

	r.drawSectionHeader("Summary")
	r.keyValue("Final value", formatutil.Currency(m.FinalValue))
	r.keyValue("Total contributed", formatutil.Currency(m.TotalContributed))
	r.keyValue("Growth", fmt.Sprintf("%s (%.2fx)", formatutil.Currency(m.Growth), m.GrowthMultiple))
	r.keyValue("Annualized return", fmt.Sprintf("%.2f%%", m.AnnualizedReturn))
	for _, summary := range m.Optimizations {
		r.keyValue("Optimized "+summary.Field, fmt.Sprintf("%s (target %s)", summary.ValueDisplay, formatutil.Currency(summary.Target)))
	}
	r.pdf.Ln(3)

	r.image("projection", projection, contentWidth)
	if len(allocation) > 0 {
		r.pdf.AddPage()
		r.drawSectionHeader("Target Allocation")
		r.image("allocation", allocation, contentWidth*0.75)
	}
}

func (r *pdfReport) addProjectionTable(stride int) {
	r.pdf.AddPage()
	r.drawSectionHeader("Projection")

	widths := []float64{contentWidth / 3, contentWidth / 3, contentWidth / 3}
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(230, 236, 245)
	r.pdf.SetTextColor(0, 51, 102)
	for i, heading := range []string{"Date", "Contributed", "Total Asset"} {
		r.pdf.CellFormat(widths[i], 7, heading, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for i, row := range r.fc.Rows(stride) {
		fill := i%2 == 1
		r.pdf.SetFillColor(245, 247, 250)
		r.pdf.CellFormat(widths[0], 6, row.Label(), "LR", 0, "C", fill, 0, "")
		r.pdf.CellFormat(widths[1], 6, r.tr(formatutil.Currency(row.Contributed)), "LR", 0, "R", fill, 0, "")
		r.pdf.CellFormat(widths[2], 6, r.tr(formatutil.Currency(row.Total)), "LR", 0, "R", fill, 0, "")
		r.pdf.Ln(-1)
	}
	r.pdf.CellFormat(contentWidth, 0, "", "T", 1, "", false, 0, "")
}

func (r *pdfReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *pdfReport) keyValue(key, value string) {
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.CellFormat(contentWidth*0.45, 6, r.tr(key), "", 0, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.CellFormat(contentWidth*0.55, 6, r.tr(value), "", 1, "L", false, 0, "")
}

func (r *pdfReport) image(name string, png []byte, width float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	x := marginLeft + (contentWidth-width)/2
	r.pdf.ImageOptions(name, x, r.pdf.GetY(), width, 0, true, opts, 0, "")
}
