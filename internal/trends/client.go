package trends

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/time/rate"
)

const (
	timeseriesWidgetID = "TIMESERIES"
	userAgent          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
)

// ErrRateLimited is returned when Google answers 429.
var ErrRateLimited = errors.New("google trends rate limited the request")

// ClientOptions configures a Google Trends client.
type ClientOptions struct {
	BaseURL  string
	HL       string // interface language, e.g. en-US
	TZ       int    // minutes offset from UTC, as the web UI sends it
	QPS      float64
	Timeout  time.Duration
	Geo      string
	Category int
}

// Client talks to the Google Trends web API: an explore call returns widget
// tokens, and the TIMESERIES widget token unlocks the interest-over-time data.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       ClientOptions
	primed     bool
	logger     zerolog.Logger
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://trends.google.com"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.HL == "" {
		opts.HL = "en-US"
	}
	if opts.QPS <= 0 {
		opts.QPS = 1
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout, Jar: jar},
		limiter:    rate.NewLimiter(rate.Limit(opts.QPS), 1),
		opts:       opts,
		logger:     log.With().Str("component", "trends_client").Logger(),
	}, nil
}

// InterestOverTime returns the per-period interest for keyword in w, in the
// order Google reports it.
func (c *Client) InterestOverTime(ctx context.Context, keyword string, w Window) ([]Point, error) {
	if err := c.prime(ctx); err != nil {
		return nil, err
	}

	token, widgetReq, err := c.explore(ctx, keyword, w)
	if err != nil {
		return nil, fmt.Errorf("explore %q: %w", keyword, err)
	}

	q := c.baseQuery()
	q.Set("req", widgetReq)
	q.Set("token", token)
	body, err := c.get(ctx, "/trends/api/widgetdata/multiline", q)
	if err != nil {
		return nil, fmt.Errorf("interest over time %q: %w", keyword, err)
	}
	points, err := parseTimeline(body)
	if err != nil {
		return nil, fmt.Errorf("interest over time %q: %w", keyword, err)
	}
	c.logger.Debug().Str("keyword", keyword).Str("timeframe", w.Timeframe()).Int("points", len(points)).Msg("fetched timeline")
	return points, nil
}

// prime loads the landing page once so the cookie jar holds the NID cookie
// the API endpoints expect.
func (c *Client) prime(ctx context.Context) error {
	if c.primed {
		return nil
	}
	q := url.Values{}
	if c.opts.Geo != "" {
		q.Set("geo", c.opts.Geo)
	} else {
		q.Set("geo", "US")
	}
	if _, err := c.get(ctx, "/", q); err != nil {
		return fmt.Errorf("trends cookies: %w", err)
	}
	c.primed = true
	return nil
}

func (c *Client) explore(ctx context.Context, keyword string, w Window) (token string, widgetReq string, err error) {
	req := `{"comparisonItem":[{}],"category":0,"property":""}`
	if req, err = sjson.Set(req, "comparisonItem.0.keyword", keyword); err != nil {
		return "", "", err
	}
	if req, err = sjson.Set(req, "comparisonItem.0.time", w.Timeframe()); err != nil {
		return "", "", err
	}
	if req, err = sjson.Set(req, "comparisonItem.0.geo", c.opts.Geo); err != nil {
		return "", "", err
	}
	if req, err = sjson.Set(req, "category", c.opts.Category); err != nil {
		return "", "", err
	}

	q := c.baseQuery()
	q.Set("req", req)
	body, err := c.get(ctx, "/trends/api/explore", q)
	if err != nil {
		return "", "", err
	}
	return timeseriesWidget(body)
}

func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("hl", c.opts.HL)
	q.Set("tz", strconv.Itoa(c.opts.TZ))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", c.opts.HL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read trends response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 120 {
			preview = preview[:120]
		}
		return nil, fmt.Errorf("trends returned %d: %s", resp.StatusCode, preview)
	}
	return body, nil
}

// stripPrefix drops the anti-XSSI line Google puts in front of the JSON.
func stripPrefix(body []byte) ([]byte, error) {
	i := bytes.IndexByte(body, '{')
	if i < 0 {
		preview := string(body)
		if len(preview) > 120 {
			preview = preview[:120]
		}
		return nil, fmt.Errorf("trends returned non-json body: %s", preview)
	}
	return body[i:], nil
}

func timeseriesWidget(body []byte) (string, string, error) {
	js, err := stripPrefix(body)
	if err != nil {
		return "", "", err
	}
	if !gjson.ValidBytes(js) {
		return "", "", errors.New("explore: invalid json")
	}
	var token, widgetReq string
	gjson.GetBytes(js, "widgets").ForEach(func(_, w gjson.Result) bool {
		if w.Get("id").String() != timeseriesWidgetID {
			return true
		}
		token = w.Get("token").String()
		widgetReq = w.Get("request").Raw
		return false
	})
	if token == "" || widgetReq == "" {
		return "", "", errors.New("explore: no TIMESERIES widget")
	}
	return token, widgetReq, nil
}

func parseTimeline(body []byte) ([]Point, error) {
	js, err := stripPrefix(body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(js) {
		return nil, errors.New("timeline: invalid json")
	}
	rows := gjson.GetBytes(js, "default.timelineData").Array()
	out := make([]Point, 0, len(rows))
	for _, row := range rows {
		secs, err := strconv.ParseInt(row.Get("time").String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("timeline: bad time %q", row.Get("time").String())
		}
		out = append(out, Point{
			Date:  truncateDay(time.Unix(secs, 0).UTC()),
			Value: row.Get("value.0").Float(),
		})
	}
	return out, nil
}
