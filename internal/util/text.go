package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// ErrUnexpectedType marks a dataset field holding an object or array where a
// display string was expected.
var ErrUnexpectedType = errors.New("unexpected field type")

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// ContainsFold reports whether sub occurs in s, ignoring case.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// EqualLower compares two strings after lower-casing both.
func EqualLower(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

// TextValue renders a dataset value as display text. Empty-ish values (nil,
// "", false, 0, NaN) become "" so callers can apply their own default.
func TextValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if !t {
			return "", nil
		}
		return "true", nil
	case float64:
		return formatFloat(t), nil
	case int:
		return formatFloat(float64(t)), nil
	case int64:
		return formatFloat(float64(t)), nil
	case json.Number:
		return formatFloat(ParseNumeric(t)), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnexpectedType, v)
	}
}

// TextOr is TextValue with a fallback for empty values.
func TextOr(v any, fallback string) (string, error) {
	s, err := TextValue(v)
	if err != nil {
		return "", err
	}
	if s == "" {
		return fallback, nil
	}
	return s, nil
}

func formatFloat(f float64) string {
	if f == 0 || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func StringPtr(v string) *string { return &v }
