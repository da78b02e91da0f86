package dependents

import (
	"math"
	"strconv"
	"strings"
)

// NotAvailable is the star text of dependents whose count is hidden.
const NotAvailable = "N/A"

// StarsToNumber converts a displayed star count to a number. It never fails:
//
//	"N/A"            -> -1
//	"" or blanks     -> 0
//	"1.2k", "3K"     -> value * 1000 (0 if the rest does not parse)
//	"1,234", "100"   -> value with commas removed (0 if it does not parse)
func StarsToNumber(text string) float64 {
	if text == NotAvailable {
		return -1
	}
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}
	if lower := strings.ToLower(s); strings.HasSuffix(lower, "k") {
		return parse(strings.TrimSpace(strings.TrimSuffix(lower, "k"))) * 1000
	}
	return parse(strings.ReplaceAll(s, ",", ""))
}

func parse(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return 0
	}
	return n
}
