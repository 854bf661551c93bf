// Package dateutil builds partial precision dates from loose year, month
// and day values.
package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

var (
	yearPattern      = regexp.MustCompile(`^\d{4}$`)
	monthNamePattern = regexp.MustCompile(`^[A-Za-z]{3,}\.?$`)
)

// Partial formats a date as "YYYY", "YYYY-MM" or "YYYY-MM-DD". The day is
// only used together with a month. Values that do not form a valid date
// reduce the precision instead of failing: an invalid day is dropped, an
// invalid month drops month and day, an invalid year yields the empty
// string. Months may be numbers or English month names, like "Mar".
func Partial(year, month, day string) string {
	year = strings.TrimSpace(year)
	if !yearPattern.MatchString(year) {
		return ""
	}
	y, _ := strconv.Atoi(year)
	m, ok := parseMonth(y, month)
	if !ok {
		return year
	}
	s := fmt.Sprintf("%s-%02d", year, m)
	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	d, ok := parseInRange(day, 1, now.With(first).EndOfMonth().Day())
	if !ok {
		return s
	}
	return fmt.Sprintf("%s-%02d", s, d)
}

// parseMonth accepts 1 to 12 or a month name.
func parseMonth(year int, s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !monthNamePattern.MatchString(s) {
		return parseInRange(s, 1, 12)
	}
	t, err := dateparse.ParseAny(fmt.Sprintf("%s 1, %d", strings.TrimSuffix(s, "."), year))
	if err != nil || t.Year() != year {
		return 0, false
	}
	return int(t.Month()), true
}

func parseInRange(s string, lo, hi int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}
