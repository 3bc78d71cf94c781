package finance

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Caption renders a one-line description of s for chart delivery.
func Caption(s Summary, quote string) string {
	if s.Points == 0 {
		return strings.ToUpper(s.Name) + " • no data"
	}
	return fmt.Sprintf("%s • %s → %s • %s days • open %s → %s %s • r=%+.2f",
		strings.ToUpper(s.Name),
		s.First.Format(DateLayout),
		s.Last.Format(DateLayout),
		humanize.Comma(int64(s.Points)),
		humanize.CommafWithDigits(s.FirstPrice, 2),
		humanize.CommafWithDigits(s.LastPrice, 2),
		strings.ToUpper(quote),
		s.Correlation,
	)
}
