package chart

import (
	"fmt"

	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	charts "github.com/vicanso/go-charts/v2"
)

// RenderAllocation draws the target weights of the assets as a PNG pie chart.
// Assets with a non-positive weight are left out.
func RenderAllocation(assets []simulation.Asset, width, height int) ([]byte, error) {
	var values []float64
	var labels []string
	for _, asset := range simulation.NormalizeAssets(assets) {
		if asset.TargetWeightPercent <= 0 {
			continue
		}
		values = append(values, asset.TargetWeightPercent)
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", asset.Name, asset.TargetWeightPercent))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no asset carries a positive target weight")
	}
	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 400
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc("Target Allocation"),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode allocation chart: %w", err)
	}
	return buf, nil
}
