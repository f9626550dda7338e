// Package location implements the gate that must be locked on a storage
// location before any vehicle can be scanned or saved.
package location

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxLength bounds a location code in characters.
const MaxLength = 15

var (
	ErrNotLocked     = errors.New("location is not locked")
	ErrLocked        = errors.New("location is locked; change location first")
	ErrEmptyLocation = errors.New("no active location")
	ErrNotAllowed    = errors.New("location is not in the allowed list")
)

// State is the lock state of a Gate.
type State string

const (
	Unlocked State = "unlocked"
	Locked   State = "locked"
)

// Normalize trims, uppercases and truncates a location code.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if utf8.RuneCountInString(code) <= MaxLength {
		return code
	}
	runes := []rune(code)
	return string(runes[:MaxLength])
}

// Gate tracks the active location and whether it is confirmed. The zero
// value is an unlocked gate with no location.
type Gate struct {
	active string
	locked bool
}

// NewGate restores a gate from persisted values. A locked flag without a
// location is dropped so the gate can never be locked on nothing.
func NewGate(active string, locked bool) *Gate {
	g := &Gate{active: Normalize(active)}
	g.locked = locked && g.active != ""
	return g
}

func (g *Gate) Active() string { return g.active }

func (g *Gate) Locked() bool { return g.locked }

func (g *Gate) State() State {
	if g.locked {
		return Locked
	}
	return Unlocked
}

// Select sets the active location from the allow-list. An empty allow-list
// accepts any code, matching a fresh install where none are configured.
func (g *Gate) Select(code string, allowed []string) error {
	code = Normalize(code)
	if len(allowed) > 0 && !contains(allowed, code) {
		return ErrNotAllowed
	}
	return g.SetActive(code)
}

// SetActive sets the active location while unlocked. Selection and
// recognition both pass through here.
func (g *Gate) SetActive(code string) error {
	if g.locked {
		return ErrLocked
	}
	code = Normalize(code)
	if code == "" {
		return ErrEmptyLocation
	}
	g.active = code
	return nil
}

// Lock confirms the active location.
func (g *Gate) Lock() error {
	if g.active == "" {
		return ErrEmptyLocation
	}
	g.locked = true
	return nil
}

// Unlock releases the lock and keeps the active location for editing.
func (g *Gate) Unlock() {
	g.locked = false
}

// RequireLocked returns the locked location or ErrNotLocked.
func (g *Gate) RequireLocked() (string, error) {
	if !g.locked || g.active == "" {
		return "", ErrNotLocked
	}
	return g.active, nil
}

func contains(list []string, code string) bool {
	for _, item := range list {
		if Normalize(item) == code {
			return true
		}
	}
	return false
}
