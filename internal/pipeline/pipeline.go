package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptoTrends/internal/config"
	"cryptoTrends/internal/finance"
	"cryptoTrends/internal/trends"
)

// PriceSource returns daily prices keyed by YYYY-MM-DD.
type PriceSource interface {
	HistoricalPrices(ctx context.Context, ticker string, start, end time.Time) (finance.PriceSeries, error)
}

// Captioner turns a summary into a human caption.
type Captioner interface {
	Describe(ctx context.Context, s finance.Summary) (string, error)
}

type Options struct {
	QuoteCurrency string
	Lookback      time.Duration
	Now           func() time.Time
}

// Pipeline fetches, enriches, aligns, and renders one currency at a time.
type Pipeline struct {
	prices    PriceSource
	trends    trends.Provider
	captioner Captioner
	opts      Options
	logger    zerolog.Logger
}

func New(prices PriceSource, provider trends.Provider, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lookback == 0 {
		opts.Lookback = 365 * 24 * time.Hour
	}
	if opts.QuoteCurrency == "" {
		opts.QuoteCurrency = "EUR"
	}
	return &Pipeline{
		prices: prices,
		trends: provider,
		opts:   opts,
		logger: log.With().Str("component", "pipeline").Logger(),
	}
}

// WithCaptioner enables model-written captions. Without one, or when it
// fails, the plain summary caption is used.
func (p *Pipeline) WithCaptioner(c Captioner) *Pipeline {
	p.captioner = c
	return p
}

// Result is the outcome of one currency's pass.
type Result struct {
	Currency config.Currency
	Figure   finance.Figure
	Summary  finance.Summary
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

// Run processes currencies in order. A failed currency is recorded in its
// Result and the next one still runs. Once ctx is done the remaining
// currencies fail with the context error.
func (p *Pipeline) Run(ctx context.Context, currencies []config.Currency) []Result {
	results := make([]Result, 0, len(currencies))
	for _, cur := range currencies {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Currency: cur, Err: err})
			continue
		}
		fig, sum, err := p.Process(ctx, cur)
		if err != nil {
			p.logger.Error().Err(err).Str("currency", cur.Name).Msg("currency failed")
		}
		results = append(results, Result{Currency: cur, Figure: fig, Summary: sum, Err: err})
	}
	return results
}

// Process runs the full pass for one currency.
func (p *Pipeline) Process(ctx context.Context, cur config.Currency) (finance.Figure, finance.Summary, error) {
	end := p.opts.Now()
	start := end.Add(-p.opts.Lookback)
	term := trends.Term(cur.Name)
	ticker := cur.Ticker(p.opts.QuoteCurrency)
	logger := p.logger.With().Str("currency", cur.Name).Str("ticker", ticker).Logger()
	logger.Info().Msg("getting data")

	coarse, err := trends.FetchCoarse(ctx, p.trends, term, start, end)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: %w", cur.Name, err)
	}
	prices, err := p.prices.HistoricalPrices(ctx, ticker, start, end)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: fetch prices: %w", cur.Name, err)
	}
	fine, err := trends.FetchFine(ctx, p.trends, term, start, end)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: %w", cur.Name, err)
	}

	enriched, err := trends.Enrich(fine, coarse)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: enrich: %w", cur.Name, err)
	}
	ps, err := finance.Align(enriched, prices)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: align: %w", cur.Name, err)
	}
	logger.Debug().Int("fine", fine.Len()).Int("coarse", len(coarse)).Int("prices", len(prices)).Int("plotted", ps.Len()).Msg("aligned series")

	chart := finance.ChartOptions{Name: cur.Name, QuoteCurrency: p.opts.QuoteCurrency}
	img, err := finance.RenderComparison(chart, ps)
	if err != nil {
		return finance.Figure{}, finance.Summary{}, fmt.Errorf("%s: render: %w", cur.Name, err)
	}

	sum := finance.Summarize(cur.Name, ps)
	fig := finance.Figure{
		Name:      cur.Name,
		Title:     chart.Title(),
		Caption:   p.caption(ctx, sum),
		Image:     img,
		CreatedAt: p.opts.Now(),
	}
	logger.Info().Int("points", sum.Points).Float64("correlation", sum.Correlation).Msg("chart rendered")
	return fig, sum, nil
}

func (p *Pipeline) caption(ctx context.Context, sum finance.Summary) string {
	plain := finance.Caption(sum, p.opts.QuoteCurrency)
	if p.captioner == nil {
		return plain
	}
	text, err := p.captioner.Describe(ctx, sum)
	if err != nil || text == "" {
		p.logger.Warn().Err(err).Str("currency", sum.Name).Msg("commentary unavailable, using summary caption")
		return plain
	}
	return plain + "\n\n" + text
}
