package finance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vicanso/go-charts/v2"
)

// ChartOptions names the pieces of a comparison chart.
type ChartOptions struct {
	Name          string // currency name, used in the title
	QuoteCurrency string
}

func (o ChartOptions) Title() string {
	return strings.ToUpper(o.Name) + " versus search frequency"
}

func (o ChartOptions) legend() []string {
	quote := o.QuoteCurrency
	if quote == "" {
		quote = "EUR"
	}
	return []string{"Relative Search Popularity", fmt.Sprintf("Price (%s)", strings.ToUpper(quote))}
}

// RenderComparison draws search popularity on the left axis and price on the
// right axis over a shared date axis, and returns the PNG.
func RenderComparison(opts ChartOptions, ps PlotSeries) ([]byte, error) {
	if ps.Len() < 2 {
		return nil, errors.New("not enough data points")
	}

	labels := make([]string, ps.Len())
	for i, d := range ps.Dates {
		labels[i] = d.Format(DateLayout)
	}
	trendMin, trendMax := paddedRange(ps.Trend)
	priceMin, priceMax := paddedRange(ps.Price)

	names := opts.legend()
	seriesList := charts.NewSeriesListDataFromValues([][]float64{ps.Trend, ps.Price}, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
		seriesList[i].AxisIndex = i
	}

	split := 12
	if ps.Len() < 60 {
		split = 8
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(opts.Title()),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(
			charts.YAxisOption{Min: &trendMin, Max: &trendMax, DivideCount: 5},
			charts.YAxisOption{Min: &priceMin, Max: &priceMax, DivideCount: 5, Position: charts.PositionRight},
		),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Left: charts.PositionRight}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// paddedRange returns min/max with 5% headroom, floored at zero.
func paddedRange(vals []float64) (float64, float64) {
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	pad := (mx - mn) * 0.05
	if pad < mx*0.002 {
		pad = mx * 0.002
	}
	if pad == 0 {
		pad = 1
	}
	mn -= pad
	if mn < 0 {
		mn = 0
	}
	return mn, mx + pad
}
