package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vinscan/internal/kvstore"
	"vinscan/internal/logging"
	"vinscan/internal/vin"
)

// Persister reads and replaces JSON blobs by key. *kvstore.Store satisfies it.
type Persister interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	PutJSON(ctx context.Context, key string, value any) error
}

// DuplicateError reports a VIN already present in history.
type DuplicateError struct {
	VIN      string
	Existing Record
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("VIN %s already in stock (location %s, saved %s %s)",
		e.VIN, e.Existing.Location, e.Existing.Date, e.Existing.Time)
}

func (e *DuplicateError) Is(target error) bool {
	return target == vin.ErrDuplicateVin
}

// Store holds history records most-recent-first.
type Store struct {
	persist Persister
	logger  *slog.Logger
	records []Record
}

// Load reads the persisted history. An absent blob yields an empty store.
func Load(ctx context.Context, persist Persister, logger *slog.Logger) (*Store, error) {
	s := &Store{persist: persist, logger: logging.NewComponentLogger(logger, "history")}
	var records []Record
	if _, err := persist.GetJSON(ctx, kvstore.KeyHistory, &records); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	s.records = records
	s.logger.Debug("history loaded", logging.Int("records", len(records)))
	return s, nil
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns a copy of the records, most recent first.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Find returns the record holding v, if any.
func (s *Store) Find(v string) (Record, bool) {
	for _, rec := range s.records {
		if rec.VIN == v {
			return rec, true
		}
	}
	return Record{}, false
}

// CheckDuplicate returns a *DuplicateError when v is already stored.
func (s *Store) CheckDuplicate(v string) error {
	if existing, ok := s.Find(v); ok {
		return &DuplicateError{VIN: v, Existing: existing}
	}
	return nil
}

// Append inserts rec at the front and persists. A duplicate VIN is refused
// and the existing record is left as is.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if !vin.IsCanonical(rec.VIN) {
		return fmt.Errorf("append %q: %w", rec.VIN, &vin.IncompleteError{Usable: len(vin.Normalize(rec.VIN).Candidate)})
	}
	if err := s.CheckDuplicate(rec.VIN); err != nil {
		s.logger.Info("duplicate vin refused",
			logging.String(logging.FieldVIN, rec.VIN),
			logging.String(logging.FieldLocation, rec.Location),
		)
		return err
	}

	next := make([]Record, 0, len(s.records)+1)
	next = append(next, rec)
	next = append(next, s.records...)
	if err := s.replace(ctx, next); err != nil {
		return err
	}
	s.logger.Info("record saved",
		logging.String(logging.FieldVIN, rec.VIN),
		logging.String(logging.FieldLocation, rec.Location),
		logging.Int("records", len(next)),
	)
	return nil
}

// Clear removes every record. Confirmation is the caller's job.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.replace(ctx, []Record{}); err != nil {
		return err
	}
	s.logger.Info("history cleared")
	return nil
}

func (s *Store) replace(ctx context.Context, records []Record) error {
	if err := s.persist.PutJSON(ctx, kvstore.KeyHistory, records); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	s.records = records
	return nil
}

// ErrEmptyHistory is returned by export helpers when there is nothing to write.
var ErrEmptyHistory = errors.New("history is empty; nothing to export")
