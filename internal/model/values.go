package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// MaxAmount bounds currency values so that minor-unit arithmetic never overflows.
const MaxAmount = 1e13

var (
	errMissing     = errors.New("missing value")
	errNotNumeric  = errors.New("not a number")
	errOutOfRange  = errors.New("out of range")
	errUnparseable = errors.New("unparseable date")
)

// CivilDate truncates t to midnight UTC of its own calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int((CivilDate(b).Unix() - CivilDate(a).Unix()) / secondsPerDay)
}

// FormatDate renders t as a calendar date, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseAmount accepts the loosely typed numeric values found in documents and
// JSON bodies: numbers of any Go numeric type, json.Number and numeric strings.
func ParseAmount(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, errMissing
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, errNotNumeric
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, errMissing
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errNotNumeric
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %T", errNotNumeric, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	if math.Abs(f) > MaxAmount {
		return 0, errOutOfRange
	}
	return f, nil
}

// ParseDate accepts time.Time values and strings in calendar-date or RFC 3339 form.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, errMissing
	case time.Time:
		if d.IsZero() {
			return time.Time{}, errMissing
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, errMissing
		}
		return *d, nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, errMissing
		}
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Time{}, errUnparseable
	default:
		return time.Time{}, fmt.Errorf("%w: %T", errUnparseable, v)
	}
}

// IsMissing reports whether err came from an absent value rather than a malformed one.
func IsMissing(err error) bool {
	return errors.Is(err, errMissing)
}
