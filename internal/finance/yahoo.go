package finance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

// NotFoundError is returned when Yahoo does not know the ticker.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("currency pair %q not found", e.Ticker)
}

// FetchError is returned for any other non-200 response.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("error receiving historical price data (status code: %d)", e.StatusCode)
	}
	return fmt.Sprintf("error receiving historical price data (status code: %d): %s", e.StatusCode, e.Body)
}

// YahooClient downloads daily price history as CSV.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

func NewYahooClient(httpClient *http.Client, baseURL string) *YahooClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log.With().Str("component", "yahoo").Logger(),
	}
}

// HistoricalPrices fetches one row per day in [start, end) for ticker.
// There is no retry: a failed request is returned as is.
func (y *YahooClient) HistoricalPrices(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	u := fmt.Sprintf("%s/v7/finance/download/%s?%s", y.baseURL, url.PathEscape(ticker), q.Encode())

	y.logger.Info().Str("ticker", ticker).Msg("getting historical price data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv,*/*;q=0.8")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Ticker: ticker}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: preview(body)}
	}

	prices, err := ParsePriceCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo parse: %w", err)
	}
	y.logger.Debug().Str("ticker", ticker).Int("rows", len(prices)).Msg("fetched price rows")
	return prices, nil
}

// ParsePriceCSV reads a header row and zips every following row with it.
// Columns beyond the shorter of header and row are dropped. Rows without a
// Date value are skipped.
func ParsePriceCSV(r io.Reader) (PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return PriceSeries{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	out := PriceSeries{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		n := len(header)
		if len(row) < n {
			n = len(row)
		}
		rec := make(PriceRecord, n)
		for i := 0; i < n; i++ {
			rec[header[i]] = row[i]
		}
		date, ok := rec[ColumnDate]
		if !ok || date == "" {
			continue
		}
		delete(rec, ColumnDate)
		out[date] = rec
	}
	return out, nil
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
