package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seriesOf(points ...Point) *Series {
	s := NewSeries()
	for _, p := range points {
		s.Set(p)
	}
	return s
}

func TestEnrich_NextCoarsePoint(t *testing.T) {
	fine := seriesOf(
		Point{Date: day("2023-01-05"), Value: 10},
		Point{Date: day("2023-02-10"), Value: 20},
	)
	coarse := []Point{
		{Date: day("2023-01-01"), Value: 5},
		{Date: day("2023-02-01"), Value: 7},
		{Date: day("2023-03-01"), Value: 9},
	}

	got, err := Enrich(fine, coarse)
	require.NoError(t, err)

	assert.Equal(t, []Point{
		{Date: day("2023-01-05"), Value: 17},
		{Date: day("2023-02-10"), Value: 29},
	}, got.Points())
}

func TestEnrich_DoesNotTouchInput(t *testing.T) {
	fine := seriesOf(Point{Date: day("2023-01-05"), Value: 10})
	_, err := Enrich(fine, []Point{{Date: day("2023-02-01"), Value: 7}})
	require.NoError(t, err)

	v, ok := fine.Get(day("2023-01-05"))
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestEnrich_FallsBackToLastPoint(t *testing.T) {
	fine := seriesOf(
		Point{Date: day("2023-03-01"), Value: 1},
		Point{Date: day("2023-04-15"), Value: 2},
	)
	coarse := []Point{
		{Date: day("2023-01-01"), Value: 5},
		{Date: day("2023-03-01"), Value: 9},
	}

	got, err := Enrich(fine, coarse)
	require.NoError(t, err)

	// 2023-03-01 equals the last coarse date, so nothing is strictly after it.
	assert.Equal(t, []Point{
		{Date: day("2023-03-01"), Value: 10},
		{Date: day("2023-04-15"), Value: 11},
	}, got.Points())
}

func TestEnrich_SameDayIsNotMatched(t *testing.T) {
	fine := seriesOf(Point{Date: day("2023-02-01"), Value: 3})
	coarse := []Point{
		{Date: day("2023-02-01"), Value: 100},
		{Date: day("2023-02-08"), Value: 4},
	}

	got, err := Enrich(fine, coarse)
	require.NoError(t, err)

	v, _ := got.Get(day("2023-02-01"))
	assert.Equal(t, 7.0, v)
}

func TestEnrich_EmptyCoarse(t *testing.T) {
	fine := seriesOf(Point{Date: day("2023-01-05"), Value: 10})

	_, err := Enrich(fine, nil)
	assert.ErrorIs(t, err, ErrEmptyCoarse)
}

func TestEnrich_Property(t *testing.T) {
	coarse := []Point{
		{Date: day("2023-01-01"), Value: 3},
		{Date: day("2023-01-08"), Value: 6},
		{Date: day("2023-01-15"), Value: 12},
	}
	fine := NewSeries()
	for d := day("2022-12-25"); d.Before(day("2023-01-25")); d = d.AddDate(0, 0, 1) {
		fine.Set(Point{Date: d, Value: float64(d.Day())})
	}

	got, err := Enrich(fine, coarse)
	require.NoError(t, err)
	require.Equal(t, fine.Len(), got.Len())

	for _, p := range fine.Points() {
		want := coarse[len(coarse)-1].Value
		for _, c := range coarse {
			if c.Date.After(p.Date) {
				want = c.Value
				break
			}
		}
		v, ok := got.Get(p.Date)
		require.True(t, ok)
		assert.Equal(t, p.Value+want, v, p.Date.Format(dateLayout))
	}
}
