package vin

import (
	"strconv"
	"strings"
)

const yearCodes = "ABCDEFGHJKLMNPRSTVWXY123456789"

// ModelYear decodes position 10 using the 30-year cycle that starts in 1980,
// picking the most recent year not after nextYear. It returns 0 when the
// character is not a year code.
func ModelYear(v string, nextYear int) int {
	if len(v) < 10 {
		return 0
	}
	idx := strings.IndexByte(yearCodes, v[9])
	if idx < 0 {
		return 0
	}
	year := 1980 + idx
	for year+30 <= nextYear {
		year += 30
	}
	return year
}

// ModelYearString is ModelYear formatted for a record, or "" when unknown.
func ModelYearString(v string, nextYear int) string {
	if y := ModelYear(v, nextYear); y > 0 {
		return strconv.Itoa(y)
	}
	return ""
}

var checkWeights = [Length]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

func transliterate(r byte) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'A' && r <= 'H':
		return int(r-'A') + 1, true
	case r >= 'J' && r <= 'N':
		return int(r-'J') + 1, true
	case r == 'P':
		return 7, true
	case r == 'R':
		return 9, true
	case r >= 'S' && r <= 'Z':
		return int(r-'S') + 2, true
	}
	return 0, false
}

// CheckDigit computes the expected character at position 9.
func CheckDigit(v string) (byte, bool) {
	if !IsCanonical(v) {
		return 0, false
	}
	sum := 0
	for i := 0; i < Length; i++ {
		val, ok := transliterate(v[i])
		if !ok {
			return 0, false
		}
		sum += val * checkWeights[i]
	}
	rem := sum % 11
	if rem == 10 {
		return 'X', true
	}
	return byte('0' + rem), true
}

// CheckDigitValid reports whether position 9 matches the computed check digit.
// Only North American VINs are required to carry one, so callers treat a
// mismatch as a warning.
func CheckDigitValid(v string) bool {
	want, ok := CheckDigit(v)
	return ok && v[8] == want
}
