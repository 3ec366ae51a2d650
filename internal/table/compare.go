package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DateEpoch is the value missing or unparsable dates sort as.
var DateEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
}

// comparator orders two cell values of the same column.
type comparator func(a, b any) int

func newCollator(tag language.Tag) *collate.Collator {
	return collate.New(tag, collate.IgnoreCase)
}

func newComparator(t ValueType, coll *collate.Collator) comparator {
	switch t {
	case TypeNumber:
		return compareNumbers
	case TypeDate:
		return compareDates
	default:
		return func(a, b any) int {
			return coll.CompareString(toText(a), toText(b))
		}
	}
}

// rowComparator compares two rows on the column at index, honouring
// direction by negating the result.
func rowComparator(index int, cmp comparator, ascending bool) func(a, b Row) int {
	return func(a, b Row) int {
		c := cmp(a.Value(index), b.Value(index))
		if !ascending {
			return -c
		}
		return c
	}
}

func compareNumbers(a, b any) int {
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareDates(a, b any) int {
	return toTime(a).Compare(toTime(b))
}

// toFloat coerces a cell to a float. Anything that does not parse as a
// number counts as 0.
func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f = parseFloat(string(n))
	case string:
		f = parseFloat(n)
	case bool:
		return 0
	default:
		f = parseFloat(fmt.Sprint(n))
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	// out of range input still parsed, f is ±Inf or ±0
	return f
}

// toTime coerces a cell to a point in time. Empty and unparsable values
// collapse to DateEpoch.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return DateEpoch
	case time.Time:
		if t.IsZero() {
			return DateEpoch
		}
		return t
	case *time.Time:
		if t == nil || t.IsZero() {
			return DateEpoch
		}
		return *t
	case string:
		return parseDate(t)
	case int64:
		return time.UnixMilli(t).UTC()
	case int:
		return time.UnixMilli(int64(t)).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	default:
		return parseDate(fmt.Sprint(t))
	}
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateEpoch
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return DateEpoch
}

// LooksLikeDate reports whether s parses with one of the accepted layouts.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
