package finance

import "time"

// DateLayout is the key format of PriceSeries and the x-axis label format.
const DateLayout = "2006-01-02"

const (
	ColumnDate = "Date"
	ColumnOpen = "Open"

	// NullValue marks a missing price in the Yahoo CSV.
	NullValue = "null"
)

// PriceRecord holds one CSV row keyed by column name, values verbatim.
// The Date column is not included.
type PriceRecord map[string]string

// Open returns the Open column or NullValue when the column is absent.
func (r PriceRecord) Open() string {
	if v, ok := r[ColumnOpen]; ok {
		return v
	}
	return NullValue
}

// PriceSeries maps YYYY-MM-DD to the record of that day.
type PriceSeries map[string]PriceRecord

// PlotSeries holds three parallel sequences ready to be charted.
type PlotSeries struct {
	Dates []time.Time
	Trend []float64
	Price []float64
}

func (p PlotSeries) Len() int { return len(p.Dates) }

// Summary describes a PlotSeries for captions and commentary.
type Summary struct {
	Name        string
	Points      int
	First       time.Time
	Last        time.Time
	FirstPrice  float64
	LastPrice   float64
	MinTrend    float64
	MaxTrend    float64
	Correlation float64 // Pearson, trend vs price; 0 when undefined
}
