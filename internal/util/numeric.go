package util

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumericPattern = regexp.MustCompile(`[^0-9.\-]+`)
	floatPrefix       = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)`)
)

// ParseNumeric coerces a heterogeneous dataset value to a number. Numbers pass
// through unchanged. Strings lose every character outside [0-9.-] and the
// longest leading float is parsed ("1,234.5 EGP" -> 1234.5). Anything that
// cannot be read that way, including nil, booleans and objects, is 0.
func ParseNumeric(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case uint:
		return float64(t)
	case uint64:
		return float64(t)
	case uint32:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return ParseNumeric(t.String())
	case string:
		return parseNumericString(t)
	default:
		return 0
	}
}

func parseNumericString(input string) float64 {
	stripped := nonNumericPattern.ReplaceAllString(input, "")
	token := floatPrefix.FindString(stripped)
	if token == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// ParseBound reads one side of a range label such as "11-50". Blank is
// 0 and anything unparseable is NaN, so comparisons against it are false.
func ParseBound(input string) float64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
