package finance

import (
	"fmt"
	"math"
	"strconv"

	"cryptoTrends/internal/trends"
)

// Align walks the enriched trend series in order and keeps the days that have
// a usable Open price. Days missing from prices or priced "null" are dropped.
func Align(enriched *trends.Series, prices PriceSeries) (PlotSeries, error) {
	var out PlotSeries
	for _, p := range enriched.Points() {
		key := p.Date.Format(DateLayout)
		rec, ok := prices[key]
		if !ok {
			continue
		}
		open := rec.Open()
		if open == NullValue {
			continue
		}
		price, err := strconv.ParseFloat(open, 64)
		if err != nil {
			return PlotSeries{}, fmt.Errorf("price for %s: %w", key, err)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return PlotSeries{}, fmt.Errorf("invalid price for %s: %f (NaN or Inf)", key, price)
		}
		out.Dates = append(out.Dates, p.Date)
		out.Trend = append(out.Trend, p.Value)
		out.Price = append(out.Price, price)
	}
	return out, nil
}

// Summarize computes the figures used in captions.
func Summarize(name string, ps PlotSeries) Summary {
	s := Summary{Name: name, Points: ps.Len()}
	if ps.Len() == 0 {
		return s
	}
	s.First, s.Last = ps.Dates[0], ps.Dates[ps.Len()-1]
	s.FirstPrice, s.LastPrice = ps.Price[0], ps.Price[ps.Len()-1]
	s.MinTrend, s.MaxTrend = ps.Trend[0], ps.Trend[0]
	for _, v := range ps.Trend[1:] {
		if v < s.MinTrend {
			s.MinTrend = v
		}
		if v > s.MaxTrend {
			s.MaxTrend = v
		}
	}
	s.Correlation = pearson(ps.Trend, ps.Price)
	return s
}

// pearson returns 0 when either series is constant or too short.
func pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	r := cov / math.Sqrt(vx*vy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
