package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vinscan/internal/config"
	"vinscan/internal/history"
	"vinscan/internal/kvstore"
	"vinscan/internal/logging"
	"vinscan/internal/recognition"
	"vinscan/internal/services"
	"vinscan/internal/session"
	"vinscan/internal/settings"
)

// nowFunc is the clock used for stamping and exports.
var nowFunc = time.Now

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// app is everything one invocation needs, opened from configuration.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	store     *kvstore.Store
	history   *history.Store
	settings  *settings.Store
	session   *session.Session
	// client is nil when no recognition credential is configured.
	client *recognition.Client
}

func (c *commandContext) openApp(ctx context.Context) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.NewFromConfig(cfg, uuid.NewString(), c.verbose())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, logCloser: logCloser}

	store, err := kvstore.Open(cfg)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("open state database: %w", err)
	}
	a.store = store
	hist, err := history.Load(ctx, store, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	prefs, err := settings.Load(ctx, store, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.history = hist
	a.settings = prefs

	// A nil *Client stored in the interface would not compare equal to nil,
	// so the recognizer stays unset unless a client exists.
	var recognizer session.Recognizer
	if cfg.RecognitionConfigured() {
		a.client = recognition.NewClient(recognition.ConfigFrom(cfg),
			recognition.WithLogger(logger),
			recognition.WithClock(nowFunc),
		)
		recognizer = a.client
	}

	a.session = session.New(session.Options{
		History:    hist,
		Settings:   prefs,
		Recognizer: recognizer,
		Logger:     logger,
		Now:        nowFunc,
		Location:   loc,
		DateLayout: cfg.History.DateLayout,
		TimeLayout: cfg.History.TimeLayout,
	})
	if err := a.session.Load(ctx, store); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// logFailure records a failed command in the log file. Interrupts are not
// failures.
func (a *app) logFailure(cmd *cobra.Command, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	attrs := []logging.Attr{
		logging.String("command", cmd.CommandPath()),
		logging.Error(err),
		logging.Bool("recoverable", services.Recoverable(err)),
	}
	if hint := errorHint(err); hint != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
	}
	logging.ErrorWithContext(a.logger, "command failed", "command_failed", attrs...)
}

func (a *app) now() time.Time {
	loc, err := a.cfg.Location()
	if err != nil {
		return nowFunc()
	}
	return nowFunc().In(loc)
}

// requireRecognition returns the client or the configuration error that
// explains why recognition is unavailable.
func (a *app) requireRecognition() (*recognition.Client, error) {
	if a.client == nil {
		return nil, recognition.ErrNotConfigured
	}
	return a.client, nil
}

// withApp runs fn against a read-only view of the state.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := commandCtx(cmd)
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	runErr := fn(ctx, a)
	a.logFailure(cmd, runErr)
	return runErr
}

// withSession holds the cross-process guard, runs fn and persists the session
// afterwards, even when fn fails, so a rejected action never loses the gate
// or the pending draft.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	guard, err := session.AcquireGuard(cfg.RecognitionLockPath())
	if err != nil {
		return err
	}
	defer guard.Release()

	ctx := commandCtx(cmd)
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	runErr := fn(ctx, a)
	// Persist with a fresh context so an interrupt still records the state.
	if err := a.session.Persist(context.WithoutCancel(ctx), a.store); err != nil {
		runErr = errors.Join(runErr, err)
	}
	a.logFailure(cmd, runErr)
	return runErr
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
