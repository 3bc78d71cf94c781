package trends

import "errors"

// ErrEmptyCoarse is returned when there is no baseline to enrich with.
var ErrEmptyCoarse = errors.New("coarse trend series is empty")

// Enrich adds a coarse baseline to every point of fine and returns the result
// as a new series in the same order. For a fine day d the baseline is the
// first coarse point dated strictly after d, or the last coarse point when
// none is. coarse is expected in date order.
func Enrich(fine *Series, coarse []Point) (*Series, error) {
	if len(coarse) == 0 {
		return nil, ErrEmptyCoarse
	}
	out := NewSeries()
	for _, p := range fine.Points() {
		base := coarse[len(coarse)-1]
		for _, c := range coarse {
			if c.Date.After(p.Date) {
				base = c
				break
			}
		}
		out.Set(Point{Date: p.Date, Value: p.Value + base.Value})
	}
	return out, nil
}
