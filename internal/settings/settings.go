// Package settings persists the company name and location allow-list.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vinscan/internal/kvstore"
	"vinscan/internal/location"
	"vinscan/internal/logging"
)

// DefaultCompany is used until the operator names their business.
const DefaultCompany = "MY DEALERSHIP"

var ErrEmptyCompany = errors.New("company name must not be empty")

// Settings mirrors the persisted blob.
type Settings struct {
	CompanyName      string   `json:"companyName"`
	AllowedLocations []string `json:"allowedLocations"`
	// StrictLocationMode is stored and displayed but enforces nothing yet.
	StrictLocationMode bool `json:"strictLocationMode"`
}

// Defaults returns the first-run settings.
func Defaults() Settings {
	return Settings{CompanyName: DefaultCompany, AllowedLocations: []string{}}
}

// Persister reads and replaces JSON blobs by key.
type Persister interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	PutJSON(ctx context.Context, key string, value any) error
}

// Store owns the settings and writes them on every change.
type Store struct {
	persist Persister
	logger  *slog.Logger
	current Settings
}

// Load reads persisted settings, falling back to Defaults when absent.
func Load(ctx context.Context, persist Persister, logger *slog.Logger) (*Store, error) {
	s := &Store{persist: persist, logger: logging.NewComponentLogger(logger, "settings")}
	current := Defaults()
	if _, err := persist.GetJSON(ctx, kvstore.KeySettings, &current); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if strings.TrimSpace(current.CompanyName) == "" {
		current.CompanyName = DefaultCompany
	}
	if current.AllowedLocations == nil {
		current.AllowedLocations = []string{}
	}
	s.current = current
	return s, nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	out := s.current
	out.AllowedLocations = slices.Clone(s.current.AllowedLocations)
	return out
}

func (s *Store) Company() string { return s.current.CompanyName }

func (s *Store) AllowedLocations() []string { return slices.Clone(s.current.AllowedLocations) }

// SetCompany renames the company. Names are stored uppercase.
func (s *Store) SetCompany(ctx context.Context, name string) error {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ErrEmptyCompany
	}
	next := s.Get()
	next.CompanyName = cases.Upper(language.Und).String(name)
	return s.save(ctx, next, "company renamed", logging.String("company", next.CompanyName))
}

// AddLocation appends a code to the allow-list. It reports false when the
// normalized code was already present.
func (s *Store) AddLocation(ctx context.Context, code string) (bool, error) {
	code = location.Normalize(code)
	if code == "" {
		return false, location.ErrEmptyLocation
	}
	if slices.Contains(s.current.AllowedLocations, code) {
		return false, nil
	}
	next := s.Get()
	next.AllowedLocations = append(next.AllowedLocations, code)
	return true, s.save(ctx, next, "location allowed", logging.String(logging.FieldLocation, code))
}

// RemoveLocation drops a code from the allow-list. It reports false when the
// code was not listed.
func (s *Store) RemoveLocation(ctx context.Context, code string) (bool, error) {
	code = location.Normalize(code)
	idx := slices.Index(s.current.AllowedLocations, code)
	if idx < 0 {
		return false, nil
	}
	next := s.Get()
	next.AllowedLocations = slices.Delete(next.AllowedLocations, idx, idx+1)
	return true, s.save(ctx, next, "location removed", logging.String(logging.FieldLocation, code))
}

// SetStrictLocationMode toggles the stored flag.
func (s *Store) SetStrictLocationMode(ctx context.Context, on bool) error {
	next := s.Get()
	next.StrictLocationMode = on
	return s.save(ctx, next, "strict location mode updated", logging.Bool("strict", on))
}

func (s *Store) save(ctx context.Context, next Settings, msg string, attrs ...logging.Attr) error {
	if err := s.persist.PutJSON(ctx, kvstore.KeySettings, next); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	s.current = next
	s.logger.Info(msg, logging.Args(attrs...)...)
	return nil
}
