package normalizer

import (
	"math"
	"time"

	"github.com/valyala/fastjson"
)

// timestampLayouts are tried in order. A layout without fractional seconds
// still accepts them when parsing.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// maxFractionDigits caps fractional seconds at microsecond precision.
const maxFractionDigits = 6

// secondsEnd is the length of "2006-01-02T15:04:05".
const secondsEnd = 19

// Representable range, 0001-01-01 to 9999-12-31.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

// parseTimestamp interprets a field value as an instant. Numbers are epoch
// values whose unit is inferred from magnitude; strings are matched against
// timestampLayouts.
func parseTimestamp(v *fastjson.Value) (time.Time, bool) {
	if f, ok := number(v); ok {
		return fromEpoch(f)
	}
	if s, ok := str(v); ok {
		return parseTimestampString(s)
	}
	return time.Time{}, false
}

// fromEpoch infers the unit from magnitude. Each cutoff sits 1e7 seconds
// (about four months) past the epoch in the smaller unit, so present-day
// seconds, milliseconds, microseconds and nanoseconds all resolve alike.
func fromEpoch(f float64) (time.Time, bool) {
	var sec float64
	switch {
	case f > 1e16:
		sec = f / 1e9
	case f > 1e13:
		sec = f / 1e6
	case f > 1e10:
		sec = f / 1e3
	default:
		sec = f
	}
	if math.IsNaN(sec) || sec < minEpochSeconds || sec > maxEpochSeconds {
		return time.Time{}, false
	}
	return time.UnixMicro(int64(math.Round(sec * 1e6))).UTC(), true
}

func parseTimestampString(s string) (time.Time, bool) {
	if fractionDigits(s) > maxFractionDigits {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// fractionDigits counts the digits after the seconds field of s.
func fractionDigits(s string) int {
	if len(s) <= secondsEnd || s[secondsEnd] != '.' {
		return 0
	}
	n := 0
	for _, c := range s[secondsEnd+1:] {
		if c < '0' || c > '9' {
			break
		}
		n++
	}
	return n
}
