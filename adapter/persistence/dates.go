package persistence

import (
	"time"
)

// DateField wraps a time value in the datafile, so that times are read back
// as times and not as strings.
const DateField = "$$date"

// encodeValue returns a copy of v where every [time.Time] is replaced by
// {"$$date": "<RFC 3339 with nanoseconds>"}.
func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{DateField: t.Format(time.RFC3339Nano)}
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, val := range t {
			res[k] = encodeValue(val)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, val := range t {
			res[n] = encodeValue(val)
		}
		return res
	default:
		return v
	}
}

// decodeValue reverses encodeValue. Millisecond timestamps are accepted as
// well. A malformed date is kept as the object it was written as.
func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if date, ok := t[DateField]; ok && len(t) == 1 {
			if tm, ok := parseDate(date); ok {
				return tm
			}
		}
		for k, val := range t {
			t[k] = decodeValue(val)
		}
		return t
	case []any:
		for n, val := range t {
			t[n] = decodeValue(val)
		}
		return t
	default:
		return v
	}
}

func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		tm, err := time.Parse(time.RFC3339Nano, d)
		return tm, err == nil
	case float64:
		return time.UnixMilli(int64(d)), true
	default:
		return time.Time{}, false
	}
}
