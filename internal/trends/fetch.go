package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Provider answers interest-over-time queries for a single keyword.
type Provider interface {
	InterestOverTime(ctx context.Context, keyword string, w Window) ([]Point, error)
}

// Term turns a registry name such as BITCOIN into the search term Bitcoin.
func Term(name string) string {
	return cases.Title(language.English).String(name)
}

// MonthWindows splits [start, end] into calendar months, beginning with the
// month that contains start. The last window is clipped to end.
func MonthWindows(start, end time.Time) []Window {
	start, end = truncateDay(start), truncateDay(end)
	var out []Window
	for first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !first.After(end); first = first.AddDate(0, 1, 0) {
		last := first.AddDate(0, 1, -1)
		if last.After(end) {
			last = end
		}
		out = append(out, Window{Start: first, End: last})
	}
	return out
}

// FetchFine issues one query per calendar month and merges the daily points.
// Each query is scaled 0-100 on its own, so values are only comparable
// within a month until they are passed through Enrich.
func FetchFine(ctx context.Context, p Provider, term string, start, end time.Time) (*Series, error) {
	logger := log.With().Str("component", "trends").Str("term", term).Logger()
	logger.Info().Msg("getting fine trend data")

	out := NewSeries()
	for _, w := range MonthWindows(start, end) {
		logger.Info().Msgf("... downloading trend data from %s", w)
		points, err := p.InterestOverTime(ctx, term, w)
		if err != nil {
			return nil, fmt.Errorf("trend data %s: %w", w.Timeframe(), err)
		}
		for _, pt := range points {
			out.Set(pt)
		}
	}
	return out, nil
}

// FetchCoarse runs a single query over the whole range. The provider picks
// the resolution, weekly for a one-year range.
func FetchCoarse(ctx context.Context, p Provider, term string, start, end time.Time) ([]Point, error) {
	w := Window{Start: truncateDay(start), End: truncateDay(end)}
	log.Info().Str("component", "trends").Str("term", term).Msg("getting coarse trend data")
	points, err := p.InterestOverTime(ctx, term, w)
	if err != nil {
		return nil, fmt.Errorf("coarse trend data %s: %w", w.Timeframe(), err)
	}
	return points, nil
}
