package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vinscan/internal/history"
	"vinscan/internal/location"
	"vinscan/internal/logging"
	"vinscan/internal/recognition"
	"vinscan/internal/services"
	"vinscan/internal/settings"
	"vinscan/internal/vin"
)

// ErrNoDraft reports an edit or save without a pending vehicle.
var ErrNoDraft = errors.New("no pending vehicle; scan or enter a VIN first")

// Recognizer is the remote side of a capture.
type Recognizer interface {
	RecognizeVehicle(ctx context.Context, img recognition.Image) (recognition.VehicleResult, error)
	RecognizeLocation(ctx context.Context, img recognition.Image) (string, bool, error)
}

// Token identifies one recognition request.
type Token uint64

// Draft is the vehicle pending save.
type Draft struct {
	VIN          string  `json:"vin"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         string  `json:"year"`
	Remarks      string  `json:"remarks"`
	Confidence   float64 `json:"confidence,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	CheckDigitOK bool    `json:"checkDigitOk"`
	Manual       bool    `json:"manual,omitempty"`
}

// DraftUpdate carries optional field edits; nil leaves a field unchanged.
type DraftUpdate struct {
	Make    *string
	Model   *string
	Year    *string
	Remarks *string
}

// Options wires a Session.
type Options struct {
	History    *history.Store
	Settings   *settings.Store
	Recognizer Recognizer
	Logger     *slog.Logger
	Now        func() time.Time
	Location   *time.Location
	DateLayout string
	TimeLayout string
}

// Session is the operator's scan workflow.
type Session struct {
	mu sync.Mutex

	gate     *location.Gate
	draft    *Draft
	history  *history.Store
	settings *settings.Store
	rec      Recognizer
	logger   *slog.Logger

	token    Token
	inflight bool

	now        func() time.Time
	loc        *time.Location
	dateLayout string
	timeLayout string
}

// New builds a session with an unlocked gate and no draft.
func New(opts Options) *Session {
	s := &Session{
		gate:       &location.Gate{},
		history:    opts.History,
		settings:   opts.Settings,
		rec:        opts.Recognizer,
		logger:     logging.NewComponentLogger(opts.Logger, "session"),
		now:        opts.Now,
		loc:        opts.Location,
		dateLayout: opts.DateLayout,
		timeLayout: opts.TimeLayout,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.dateLayout == "" {
		s.dateLayout = "02/01/2006"
	}
	if s.timeLayout == "" {
		s.timeLayout = "15:04"
	}
	return s
}

// BeginCapture reserves the single in-flight slot and returns its token.
func (s *Session) BeginCapture() (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		return 0, services.ErrBusy
	}
	s.token++
	s.inflight = true
	return s.token, nil
}

// finish releases the slot held by t and reports whether t is still current.
func (s *Session) finish(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.token {
		return false
	}
	s.inflight = false
	return true
}

// Supersede invalidates any in-flight request; its result will be discarded.
func (s *Session) Supersede() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		s.logger.Info("in-flight recognition superseded", logging.Uint64(logging.FieldRequestToken, uint64(s.token)))
	}
	s.token++
	s.inflight = false
}

// Busy reports whether a recognition call is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

func (s *Session) requestContext(ctx context.Context, t Token, op string) context.Context {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithToken(ctx, uint64(t))
	return services.WithOperation(ctx, op)
}

func (s *Session) recognizer() (Recognizer, error) {
	if s.rec == nil {
		return nil, recognition.ErrNotConfigured
	}
	return s.rec, nil
}

// ScanVehicle recognizes a VIN photo and, when the result validates, makes it
// the pending draft. The gate must be locked.
func (s *Session) ScanVehicle(ctx context.Context, img recognition.Image) (Draft, error) {
	if _, err := s.lockedLocation(); err != nil {
		return Draft{}, err
	}
	rec, err := s.recognizer()
	if err != nil {
		return Draft{}, err
	}
	t, err := s.BeginCapture()
	if err != nil {
		return Draft{}, err
	}
	ctx = s.requestContext(ctx, t, "scan_vin")
	logger := logging.WithContext(ctx, s.logger)

	result, recErr := rec.RecognizeVehicle(ctx, img)
	if !s.finish(t) {
		logger.Info("discarding stale vehicle result")
		return Draft{}, services.ErrStale
	}
	if recErr != nil {
		logging.WarnWithContext(logger, "vehicle recognition failed", "recognition_failed",
			logging.Error(recErr),
			logging.String(logging.FieldErrorHint, "re-capture the VIN or enter it manually"),
			logging.String(logging.FieldImpact, "no draft created"),
		)
		return Draft{}, recErr
	}

	canonical, err := vin.Validate(result.VIN)
	if err != nil {
		logger.Info("recognized VIN incomplete", logging.String("raw_vin", result.VIN), logging.Error(err))
		return Draft{}, err
	}
	year := result.Year
	if year == "" {
		year = vin.ModelYearString(canonical, s.now().Year()+1)
	}
	draft := Draft{
		VIN:        canonical,
		Make:       vin.FillMake(result.Make, canonical),
		Model:      result.Model,
		Year:       year,
		Confidence: result.Confidence,
		Notes:      result.Notes,
	}
	return s.setDraft(logger, draft)
}

// ScanLocation recognizes a location photo while the gate is unlocked. A
// reply with no readable code returns found=false and changes nothing.
func (s *Session) ScanLocation(ctx context.Context, img recognition.Image) (string, bool, error) {
	if s.gate.Locked() {
		return "", false, location.ErrLocked
	}
	rec, err := s.recognizer()
	if err != nil {
		return "", false, err
	}
	t, err := s.BeginCapture()
	if err != nil {
		return "", false, err
	}
	ctx = s.requestContext(ctx, t, "scan_location")
	logger := logging.WithContext(ctx, s.logger)

	code, found, recErr := rec.RecognizeLocation(ctx, img)
	if !s.finish(t) {
		logger.Info("discarding stale location result")
		return "", false, services.ErrStale
	}
	if recErr != nil {
		return "", false, recErr
	}
	if !found {
		logger.Info("no location code recognized")
		return "", false, nil
	}
	if err := s.gate.SetActive(code); err != nil {
		return "", false, err
	}
	logger.Info("location recognized", logging.String(logging.FieldLocation, s.gate.Active()))
	return s.gate.Active(), true, nil
}

// EnterVIN accepts a manually typed VIN through the keystroke filter.
func (s *Session) EnterVIN(raw string) (Draft, error) {
	if _, err := s.lockedLocation(); err != nil {
		return Draft{}, err
	}
	filtered := vin.FilterInput(raw)
	if len(filtered) < vin.Length {
		return Draft{}, &vin.IncompleteError{Usable: len(filtered)}
	}
	draft := Draft{
		VIN:    filtered,
		Make:   vin.InferMake(filtered),
		Year:   vin.ModelYearString(filtered, s.now().Year()+1),
		Manual: true,
	}
	return s.setDraft(s.logger, draft)
}

func (s *Session) setDraft(logger *slog.Logger, draft Draft) (Draft, error) {
	if err := s.history.CheckDuplicate(draft.VIN); err != nil {
		logger.Info("VIN already in stock", logging.String(logging.FieldVIN, draft.VIN))
		return Draft{}, err
	}
	draft.CheckDigitOK = vin.CheckDigitValid(draft.VIN)
	if !draft.CheckDigitOK {
		logging.WarnWithContext(logger, "check digit mismatch", "vin_check_digit",
			logging.String(logging.FieldVIN, draft.VIN),
			logging.String(logging.FieldErrorHint, "compare the VIN with the vehicle; non North American VINs often skip the check digit"),
			logging.String(logging.FieldImpact, "draft kept"),
		)
	}
	s.draft = &draft
	logger.Info("draft ready",
		logging.String(logging.FieldVIN, draft.VIN),
		logging.String("make", draft.Make),
		logging.Bool("check_digit_ok", draft.CheckDigitOK),
	)
	return draft, nil
}

// Draft returns the pending vehicle, if any.
func (s *Session) Draft() (Draft, bool) {
	if s.draft == nil {
		return Draft{}, false
	}
	return *s.draft, true
}

// UpdateDraft edits the pending vehicle's descriptive fields.
func (s *Session) UpdateDraft(u DraftUpdate) (Draft, error) {
	if s.draft == nil {
		return Draft{}, ErrNoDraft
	}
	d := *s.draft
	if u.Make != nil {
		d.Make = strings.TrimSpace(*u.Make)
	}
	if u.Model != nil {
		d.Model = strings.TrimSpace(*u.Model)
	}
	if u.Year != nil {
		d.Year = strings.TrimSpace(*u.Year)
	}
	if u.Remarks != nil {
		d.Remarks = strings.TrimSpace(*u.Remarks)
	}
	s.draft = &d
	return d, nil
}

// DiscardDraft drops the pending vehicle.
func (s *Session) DiscardDraft() {
	s.draft = nil
}

// Save stamps the draft with the locked location and the current date and
// time, applies placeholders and appends it to history.
func (s *Session) Save(ctx context.Context) (history.Record, error) {
	loc, err := s.lockedLocation()
	if err != nil {
		return history.Record{}, err
	}
	if s.draft == nil {
		return history.Record{}, ErrNoDraft
	}
	now := s.now().In(s.loc)
	rec := history.Record{
		VIN:      s.draft.VIN,
		Make:     s.draft.Make,
		Model:    s.draft.Model,
		Year:     s.draft.Year,
		Location: loc,
		Remarks:  s.draft.Remarks,
		Date:     now.Format(s.dateLayout),
		Time:     now.Format(s.timeLayout),
	}.WithPlaceholders()
	if err := s.history.Append(ctx, rec); err != nil {
		return history.Record{}, fmt.Errorf("save %s: %w", rec.VIN, err)
	}
	s.draft = nil
	return rec, nil
}

// Gate exposes the location gate for display.
func (s *Session) Gate() *location.Gate { return s.gate }

// SelectLocation picks a code from the configured allow-list.
func (s *Session) SelectLocation(code string) error {
	var allowed []string
	if s.settings != nil {
		allowed = s.settings.AllowedLocations()
	}
	return s.gate.Select(code, allowed)
}

// LockLocation confirms the active location.
func (s *Session) LockLocation() error {
	if err := s.gate.Lock(); err != nil {
		return err
	}
	s.logger.Info("location locked", logging.String(logging.FieldLocation, s.gate.Active()))
	return nil
}

// ChangeLocation unlocks the gate. The active location and any draft stay;
// an in-flight capture is superseded.
func (s *Session) ChangeLocation() {
	s.Supersede()
	s.gate.Unlock()
	s.logger.Info("location unlocked", logging.String(logging.FieldLocation, s.gate.Active()))
}

// Reset forgets the active location and the pending vehicle. An in-flight
// capture is superseded.
func (s *Session) Reset() {
	s.Supersede()
	s.gate = location.NewGate("", false)
	s.draft = nil
	s.logger.Info("session reset")
}

func (s *Session) lockedLocation() (string, error) {
	return s.gate.RequireLocked()
}
