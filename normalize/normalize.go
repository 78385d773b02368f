// Package normalize holds the shared field parsers used by every source
// adapter. All functions here are pure.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var bedroomPattern = regexp.MustCompile(`(?i)(\d+)\s*bed`)

// ParsePrice converts raw price text (e.g. "₦ 3,500,000" or "N450,000/year")
// into kobo. Everything that is not a digit or a decimal point is stripped
// before parsing; the remainder is read as a naira amount and truncated to
// kobo. Returns nil when no numeric amount survives.
func ParsePrice(text string) *int64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	naira, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}

	kobo := int64(math.Trunc(naira * 100))
	return &kobo
}

// ParseBedrooms returns the first integer immediately preceding the token
// "bed" (case-insensitive, optional whitespace) in the given text, so
// "4 Bedroom Duplex", "3bed flat" and "2 BEDS" all resolve. Returns nil
// when no bedroom count is present.
func ParseBedrooms(text string) *int {
	m := bedroomPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
