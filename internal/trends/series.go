package trends

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Point is one search-interest sample for a calendar day (UTC midnight).
type Point struct {
	Date  time.Time
	Value float64
}

// Window is an inclusive date range sent to the provider as a timeframe.
type Window struct {
	Start time.Time
	End   time.Time
}

// Timeframe formats the window as "YYYY-MM-DD YYYY-MM-DD".
func (w Window) Timeframe() string {
	return w.Start.Format(dateLayout) + " " + w.End.Format(dateLayout)
}

func (w Window) String() string {
	return fmt.Sprintf("%s to %s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

// Series is a date-keyed set of points that remembers first-insertion order.
type Series struct {
	order  []string
	points map[string]Point
}

func NewSeries() *Series {
	return &Series{points: map[string]Point{}}
}

// Set stores p. A point already present for the same day is overwritten in
// place and keeps its position.
func (s *Series) Set(p Point) {
	p.Date = truncateDay(p.Date)
	key := p.Date.Format(dateLayout)
	if _, ok := s.points[key]; !ok {
		s.order = append(s.order, key)
	}
	s.points[key] = p
}

// Get returns the value stored for the day of d.
func (s *Series) Get(d time.Time) (float64, bool) {
	p, ok := s.points[truncateDay(d).Format(dateLayout)]
	return p.Value, ok
}

func (s *Series) Len() int { return len(s.order) }

// Points returns a copy of the points in insertion order.
func (s *Series) Points() []Point {
	out := make([]Point, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.points[k])
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
