package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DURATION STRINGS - "8h", "1h30min", "45min"
// =============================================================================

var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)min)?$`)

// ParseHours converts a duration string into decimal hours.
//
//   "8h"      -> 8
//   "1h30min" -> 1.5
//   "45min"   -> 0.75
//
// Unlike currency parsing, a malformed duration is an error: durations feed
// hourly-contract value computation and a silent zero would hide a data
// entry mistake rather than a missing optional field.
func ParseHours(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty duration")
	}

	m := durationPattern.FindStringSubmatch(cleaned)
	if m == nil || (m[1] == "" && m[2] == "") {
		return decimal.Zero, fmt.Errorf("invalid duration %q", s)
	}

	hours := int64(0)
	minutes := int64(0)
	if m[1] != "" {
		hours, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m[2] != "" {
		minutes, _ = strconv.ParseInt(m[2], 10, 64)
	}
	if minutes >= 60 {
		return decimal.Zero, fmt.Errorf("invalid duration %q: minutes must be < 60", s)
	}

	return decimal.NewFromInt(hours).
		Add(decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))), nil
}

// FormatHours renders decimal hours back into the "1h30min" form.
// Fractional minutes are rounded to the nearest minute.
func FormatHours(hours decimal.Decimal) string {
	totalMinutes := hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	h := totalMinutes / 60
	m := totalMinutes % 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dmin", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dmin", m)
	}
}
