package service

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
)

var (
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})$`)
)

// isoLayouts are tried in order for ISO-prefixed strings longer than a bare date.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// fallbackLayouts cover the remaining textual formats seen in asset records.
var fallbackLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"2006/01/02",
	"2006.01.02",
}

// ResolveDate turns a raw date value from an asset record into a UTC instant.
//
// Accepted inputs:
//   - time.Time / *time.Time: passed through (converted to UTC)
//   - ISO-prefixed strings ("2025-01-01", "2025-01-01T00:00:00Z")
//   - slash-delimited strings, read as day/month/year (see resolveSlashDate)
//   - numbers (float64, int, int64, json.Number): milliseconds since the Unix epoch
//   - any other string matching one of a fixed list of textual layouts
//
// Anything else, including nil and empty strings, fails with *apperrors.DateParseError.
// ResolveDate never substitutes a default.
func ResolveDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, &apperrors.DateParseError{Raw: raw}
		}
		return v.UTC(), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, &apperrors.DateParseError{Raw: raw}
		}
		return v.UTC(), nil
	case string:
		return resolveDateString(v)
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, &apperrors.DateParseError{Raw: raw}
		}
		return epochMillis(f, raw)
	case float64:
		return epochMillis(v, raw)
	case float32:
		return epochMillis(float64(v), raw)
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int32:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	}
	return time.Time{}, &apperrors.DateParseError{Raw: raw}
}

func epochMillis(f float64, raw any) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, &apperrors.DateParseError{Raw: raw}
	}
	return time.UnixMilli(int64(f)).UTC(), nil
}

func resolveDateString(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &apperrors.DateParseError{Raw: raw}
	}

	if isoPrefix.MatchString(s) {
		if len(s) == len(time.DateOnly) {
			if t, err := time.Parse(time.DateOnly, s); err == nil {
				return t, nil
			}
			return time.Time{}, &apperrors.DateParseError{Raw: raw}
		}
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, &apperrors.DateParseError{Raw: raw}
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		return resolveSlashDate(raw, m[1], m[2], m[3])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &apperrors.DateParseError{Raw: raw}
}

// resolveSlashDate applies the day/month/year policy for asset records: the
// first component is the day and the second the month. The only exception is a
// second component above 12, which cannot be a month; the value is then read
// as month/day/year. Two-digit years are taken as 20YY.
func resolveSlashDate(raw, first, second, year string) (time.Time, error) {
	a, _ := strconv.Atoi(first)
	b, _ := strconv.Atoi(second)
	y, _ := strconv.Atoi(year)
	if len(year) == 2 {
		y += 2000
	}

	day, month := a, b
	if month > 12 && day <= 12 {
		day, month = b, a
	}

	t := time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises out-of-range values; a changed component means the input was invalid.
	if t.Day() != day || int(t.Month()) != month || t.Year() != y {
		return time.Time{}, &apperrors.DateParseError{Raw: raw}
	}
	return t, nil
}
