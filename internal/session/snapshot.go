package session

import (
	"context"
	"fmt"

	"vinscan/internal/kvstore"
	"vinscan/internal/location"
)

// Snapshot is the persisted part of a session.
type Snapshot struct {
	ActiveLocation string `json:"activeLocation"`
	Locked         bool   `json:"isLocationLocked"`
	Draft          *Draft `json:"pending,omitempty"`
	LastToken      uint64 `json:"lastToken"`
}

// Persister reads, replaces and removes JSON blobs by key.
type Persister interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	PutJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Snapshot captures the gate, draft and token counter.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ActiveLocation: s.gate.Active(),
		Locked:         s.gate.Locked(),
		LastToken:      uint64(s.token),
	}
	if s.draft != nil {
		d := *s.draft
		snap.Draft = &d
	}
	return snap
}

// Restore replaces the session state from a snapshot. No capture is in
// flight afterwards.
func (s *Session) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = location.NewGate(snap.ActiveLocation, snap.Locked)
	s.draft = nil
	if snap.Draft != nil {
		d := *snap.Draft
		s.draft = &d
	}
	s.token = Token(snap.LastToken)
	s.inflight = false
}

// Load restores the persisted snapshot, if one exists.
func (s *Session) Load(ctx context.Context, p Persister) error {
	var snap Snapshot
	found, err := p.GetJSON(ctx, kvstore.KeySession, &snap)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if found {
		s.Restore(snap)
	}
	return nil
}

// Persist writes the current snapshot. A session with no location and no
// pending vehicle leaves nothing behind, so the next run starts fresh.
func (s *Session) Persist(ctx context.Context, p Persister) error {
	snap := s.Snapshot()
	if snap.ActiveLocation == "" && !snap.Locked && snap.Draft == nil {
		if err := p.Delete(ctx, kvstore.KeySession); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if err := p.PutJSON(ctx, kvstore.KeySession, snap); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
