package tables

import "strings"

// NormalizeNumericCode undoes the float rendering spreadsheets apply to
// numeric code cells, so "1001.0" and "1001.00" become "1001".
// Anything that is not a plain number is returned trimmed but otherwise as-is.
func NormalizeNumericCode(s string) string {
	s = strings.TrimSpace(s)

	whole, frac, ok := strings.Cut(s, ".")
	if !ok || whole == "" || !allDigits(whole) {
		return s
	}
	if strings.Trim(frac, "0") != "" {
		return s
	}
	return whole
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
