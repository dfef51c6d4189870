// Package dates turns the date representations found in imported staff
// records into calendar dates.
package dates

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the layout produced by Format; Parse accepts it back.
const CanonicalLayout = "2006-01-02"

// Spreadsheet serial day 0. Day 60 is the phantom 1900-02-29, which is why
// the epoch sits on 1899-12-30 rather than 1900-01-01.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31.
const maxSerial = 2958465

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	numericText  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dayMonthYear = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})$`)
	dayNameYear  = regexp.MustCompile(`^(\d{1,2})[\s/\-]+([A-Za-z]+)\.?[\s/\-]+(\d{4})$`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon Jan 2 2006",
}

// monthNames maps full and abbreviated month names, Indonesian first, to
// month numbers. Keys are lower-case.
var monthNames = map[string]time.Month{
	"januari": time.January, "jan": time.January, "january": time.January,
	"februari": time.February, "pebruari": time.February, "feb": time.February, "peb": time.February, "february": time.February,
	"maret": time.March, "mar": time.March, "march": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "jun": time.June, "june": time.June,
	"juli": time.July, "jul": time.July, "july": time.July,
	"agustus": time.August, "agu": time.August, "agt": time.August, "ags": time.August, "aug": time.August, "august": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October, "oct": time.October, "october": time.October,
	"november": time.November, "nov": time.November, "nop": time.November,
	"desember": time.December, "des": time.December, "dec": time.December, "december": time.December,
}

var longMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Parse converts raw into a calendar date at UTC midnight. The rules are
// tried in order: spreadsheet serial number, ISO or locale text (never
// purely digits), DD/MM/YYYY with "/", "-" or "." separators, and finally
// "day monthName year". ok is false when nothing matches.
func Parse(raw interface{}) (t time.Time, ok bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return truncate(v), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return Parse(*v)
	case int:
		return fromSerial(float64(v))
	case int32:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case float32:
		return fromSerial(float64(v))
	case float64:
		return fromSerial(v)
	case json.Number:
		return ParseString(v.String())
	case string:
		return ParseString(v)
	case fmt.Stringer:
		return ParseString(v.String())
	default:
		return time.Time{}, false
	}
}

// ParseString applies the Parse rules to text.
func ParseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if numericText.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromSerial(f)
	}

	if !digitsOnly.MatchString(s) {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncate(t), true
			}
		}
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return build(year, time.Month(month), day)
	}

	if m := dayNameYear.FindStringSubmatch(s); m != nil {
		month, found := monthNames[strings.ToLower(m[2])]
		if !found {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return build(year, month, day)
	}

	return time.Time{}, false
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.Format(CanonicalLayout)
}

// FormatLong renders t the way decrees print dates, e.g. "17 Agustus 2025".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), longMonths[t.Month()-1], t.Year())
}

// MonthName returns the Indonesian name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return longMonths[m-1]
}

// Display parses raw and renders it with FormatLong. Unparseable non-empty
// text is returned trimmed as-is; empty input yields "".
func Display(raw interface{}) string {
	if t, ok := Parse(raw); ok {
		return FormatLong(t)
	}
	if s, isString := raw.(string); isString {
		return strings.TrimSpace(s)
	}
	return ""
}

func fromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < 1 || serial > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial))), true
}

func build(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/02 into March; reject instead.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
