package youtube

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // America/Sao_Paulo must resolve on minimal images
)

// DateLayout is the DD-MM-YYYY form used in PublicComment.Date.
const DateLayout = "02-01-2006"

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// unitPrefixes maps the leading letters of a unit word (Portuguese,
// English, Spanish) to its length. Months and years are approximations.
var unitPrefixes = []struct {
	prefix string
	unit   time.Duration
}{
	{"seg", time.Second}, {"sec", time.Second},
	{"min", time.Minute},
	{"hor", time.Hour}, {"hour", time.Hour},
	{"dia", day}, {"día", day}, {"day", day},
	{"sem", 7 * day}, {"week", 7 * day},
	{"mes", month}, {"mês", month}, {"month", month},
	{"ano", year}, {"año", year}, {"year", year},
}

var relativeRE = regexp.MustCompile(`(\d+)\s+(\p{L}+)`)

// RelativeTime turns phrases like "há 2 dias" or "3 weeks ago" into a
// calendar date. It never fails: anything it cannot read maps to today.
type RelativeTime struct {
	Now      func() time.Time
	Location *time.Location
}

// NewRelativeTime resolves tz (default America/Sao_Paulo). If the zone
// database is unavailable a fixed UTC-3 zone is used.
func NewRelativeTime(tz string) RelativeTime {
	if tz == "" {
		tz = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("UTC-3", -3*60*60)
	}
	return RelativeTime{Now: time.Now, Location: loc}
}

// Convert subtracts the quantity in phrase from now and formats the result
// as DD-MM-YYYY in r.Location.
func (r RelativeTime) Convert(phrase string) string {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	format := func(t time.Time) string { return t.In(loc).Format(DateLayout) }

	m := relativeRE.FindStringSubmatch(phrase)
	if m == nil {
		return format(now)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return format(now)
	}
	unit := unitFor(strings.ToLower(m[2]))
	if unit == 0 || n > math.MaxInt64/int64(unit) {
		return format(now)
	}
	return format(now.Add(-time.Duration(n) * unit))
}

func unitFor(word string) time.Duration {
	for _, u := range unitPrefixes {
		if strings.HasPrefix(word, u.prefix) {
			return u.unit
		}
	}
	return 0
}
