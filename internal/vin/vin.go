package vin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Length is the number of characters in a canonical VIN.
const Length = 17

var (
	// ErrIncompleteVin marks candidates with fewer than Length usable characters.
	ErrIncompleteVin = errors.New("incomplete vin")
	// ErrDuplicateVin marks a VIN that already exists in history.
	ErrDuplicateVin = errors.New("duplicate vin")
)

// IncompleteError reports how many usable characters survived normalization.
// Ambiguous lists the 1-based positions (within the truncated candidate) of
// removed I, O and Q letters.
type IncompleteError struct {
	Usable    int
	Ambiguous []int
}

func (e *IncompleteError) Error() string {
	msg := fmt.Sprintf("incomplete VIN: %d/%d usable characters", e.Usable, Length)
	if len(e.Ambiguous) > 0 {
		positions := make([]string, len(e.Ambiguous))
		for i, p := range e.Ambiguous {
			positions[i] = strconv.Itoa(p)
		}
		msg += " (ambiguous I/O/Q at " + strings.Join(positions, ", ") + ")"
	}
	return msg
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteVin
}

// Result is the outcome of normalizing raw text.
type Result struct {
	// Candidate holds the usable characters, at most Length of them.
	Candidate string
	// Ambiguous lists 1-based positions of removed I/O/Q letters.
	Ambiguous []int
}

// Complete reports whether the candidate is a full-length VIN.
func (r Result) Complete() bool {
	return len(r.Candidate) == Length
}

// Normalize applies the canonicalization steps without judging length.
func Normalize(raw string) Result {
	var truncated strings.Builder
	for _, r := range raw {
		if truncated.Len() == Length {
			break
		}
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			truncated.WriteRune(r)
		case r >= 'a' && r <= 'z':
			truncated.WriteRune(r - 'a' + 'A')
		}
	}

	var res Result
	var out strings.Builder
	for i, r := range truncated.String() {
		if isAmbiguous(r) {
			res.Ambiguous = append(res.Ambiguous, i+1)
			continue
		}
		out.WriteRune(r)
	}
	res.Candidate = out.String()
	return res
}

// Validate normalizes raw and returns the canonical VIN, or an
// *IncompleteError when fewer than Length characters remain.
func Validate(raw string) (string, error) {
	res := Normalize(raw)
	if !res.Complete() {
		return "", &IncompleteError{Usable: len(res.Candidate), Ambiguous: res.Ambiguous}
	}
	return res.Candidate, nil
}

// IsCanonical reports whether s is already a canonical VIN.
func IsCanonical(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if !Allowed(r) {
			return false
		}
	}
	return true
}

// Allowed reports whether r belongs to the canonical VIN alphabet.
func Allowed(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return !isAmbiguous(r)
	default:
		return false
	}
}

func isAmbiguous(r rune) bool {
	return r == 'I' || r == 'O' || r == 'Q'
}

// FilterInput is applied on every keystroke of manual entry: it uppercases,
// drops characters outside the canonical alphabet and caps at Length.
func FilterInput(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if b.Len() == Length {
			break
		}
		if Allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
