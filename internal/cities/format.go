package cities

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// LongDateLayout renders dates the way visits are shown to people:
// "Monday, January 2, 2006".
const LongDateLayout = "Monday, January 2, 2006"

// FormatDate renders t in local time with LongDateLayout, or an empty string
// for the zero time. Backends hand dates back in UTC.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(LongDateLayout)
}

// WikipediaURL links to the English Wikipedia article named after the city.
func (c City) WikipediaURL() string {
	title := strings.ReplaceAll(strings.TrimSpace(c.Name), " ", "_")
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(title)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate reads a visit date typed by a person. Full RFC 3339 timestamps
// keep their zone; shorter forms are taken as local time.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD or RFC 3339", raw)
}
