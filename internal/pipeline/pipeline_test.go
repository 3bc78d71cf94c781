package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTrends/internal/config"
	"cryptoTrends/internal/finance"
	"cryptoTrends/internal/trends"
)

var now = time.Date(2023, 3, 10, 15, 30, 0, 0, time.UTC)

type fakePrices struct {
	tickers []string
	fail    map[string]error
}

func (f *fakePrices) HistoricalPrices(_ context.Context, ticker string, start, end time.Time) (finance.PriceSeries, error) {
	f.tickers = append(f.tickers, ticker)
	if err, ok := f.fail[ticker]; ok {
		return nil, err
	}
	out := finance.PriceSeries{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		open := fmt.Sprintf("%d", 1000+d.YearDay())
		if d.Weekday() == time.Sunday {
			open = finance.NullValue
		}
		out[d.Format(finance.DateLayout)] = finance.PriceRecord{"Open": open, "Close": open}
	}
	return out, nil
}

type fakeTrends struct {
	coarseEmpty bool
	queries     []string
}

func (f *fakeTrends) InterestOverTime(_ context.Context, keyword string, w trends.Window) ([]trends.Point, error) {
	f.queries = append(f.queries, keyword+" "+w.Timeframe())
	// A range longer than a month is the coarse query: weekly points.
	if w.End.Sub(w.Start) > 31*24*time.Hour {
		if f.coarseEmpty {
			return nil, nil
		}
		var out []trends.Point
		for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 7) {
			out = append(out, trends.Point{Date: d, Value: 50})
		}
		return out, nil
	}
	var out []trends.Point
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		out = append(out, trends.Point{Date: d, Value: float64(d.Day())})
	}
	return out, nil
}

type fakeCaptioner struct {
	text string
	err  error
}

func (f fakeCaptioner) Describe(context.Context, finance.Summary) (string, error) {
	return f.text, f.err
}

func newTestPipeline(p PriceSource, tr trends.Provider) *Pipeline {
	return New(p, tr, Options{
		QuoteCurrency: "EUR",
		Lookback:      60 * 24 * time.Hour,
		Now:           func() time.Time { return now },
	})
}

func TestProcess(t *testing.T) {
	prices := &fakePrices{}
	tr := &fakeTrends{}

	fig, sum, err := newTestPipeline(prices, tr).Process(context.Background(), config.Currency{Name: "BITCOIN", Symbol: "BTC"})
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC-EUR"}, prices.tickers)
	require.NotEmpty(t, tr.queries)
	assert.Equal(t, "Bitcoin 2023-01-09 2023-03-10", tr.queries[0])
	assert.Equal(t, []string{
		"Bitcoin 2023-01-01 2023-01-31",
		"Bitcoin 2023-02-01 2023-02-28",
		"Bitcoin 2023-03-01 2023-03-10",
	}, tr.queries[1:])

	assert.Equal(t, "BITCOIN", fig.Name)
	assert.Equal(t, "BITCOIN versus search frequency", fig.Title)
	assert.True(t, bytes.HasPrefix(fig.Image, []byte("\x89PNG")))
	assert.True(t, strings.HasPrefix(fig.Caption, "BITCOIN • "))

	// Fine days before the price window and Sundays are dropped.
	assert.Greater(t, sum.Points, 0)
	assert.False(t, sum.First.Before(time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.NotEqual(t, time.Sunday, sum.First.Weekday())
}

func TestProcess_EmptyCoarse(t *testing.T) {
	_, _, err := newTestPipeline(&fakePrices{}, &fakeTrends{coarseEmpty: true}).
		Process(context.Background(), config.Currency{Name: "BITCOIN", Symbol: "BTC"})

	assert.ErrorIs(t, err, trends.ErrEmptyCoarse)
}

func TestRun_IsolatesFailures(t *testing.T) {
	prices := &fakePrices{fail: map[string]error{"XYZ-EUR": &finance.NotFoundError{Ticker: "XYZ-EUR"}}}
	currencies := []config.Currency{
		{Name: "BITCOIN", Symbol: "BTC"},
		{Name: "NOPECOIN", Symbol: "XYZ"},
		{Name: "LITECOIN", Symbol: "LTC"},
	}

	results := newTestPipeline(prices, &fakeTrends{}).Run(context.Background(), currencies)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())

	var nf *finance.NotFoundError
	require.True(t, errors.As(results[1].Err, &nf))
	assert.Equal(t, "XYZ-EUR", nf.Ticker)
	assert.Equal(t, "LITECOIN", results[2].Figure.Name)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newTestPipeline(&fakePrices{}, &fakeTrends{}).Run(ctx, config.DefaultCurrencies())

	require.Len(t, results, 4)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestCaption_WithCommentary(t *testing.T) {
	p := newTestPipeline(&fakePrices{}, &fakeTrends{}).WithCaptioner(fakeCaptioner{text: "Searches led the rally."})

	fig, _, err := p.Process(context.Background(), config.Currency{Name: "DOGECOIN", Symbol: "DOGE"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fig.Caption, "\n\nSearches led the rally."))
}

func TestCaption_CommentaryFailure(t *testing.T) {
	p := newTestPipeline(&fakePrices{}, &fakeTrends{}).WithCaptioner(fakeCaptioner{err: errors.New("quota")})

	fig, sum, err := p.Process(context.Background(), config.Currency{Name: "DOGECOIN", Symbol: "DOGE"})
	require.NoError(t, err)
	assert.Equal(t, finance.Caption(sum, "EUR"), fig.Caption)
}
