package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

var (
	ErrTransitionNotAllowed = errors.New("wizard: transition not allowed")
	ErrUnknownStep          = errors.New("wizard: unknown step")
	ErrNotMounted           = errors.New("wizard: screen is no longer mounted")
	ErrGuardNotSatisfied    = errors.New("wizard: required input missing")
	ErrFlowClosed           = errors.New("wizard: flow closed")
)

// Mount is one mounted screen. Its context is cancelled when the screen is
// left, which ends any work started on its behalf.
type Mount struct {
	Step   Step
	Params Params
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func (m *Mount) Context() context.Context {
	return m.ctx
}

// Active reports whether the screen is still mounted.
func (m *Mount) Active() bool {
	return m.ctx.Err() == nil
}

// Flow drives one user's pass through the steps. Every transition unmounts
// the current screen and mounts the next one with the bag it was given.
type Flow struct {
	mu      sync.Mutex
	base    context.Context
	mount   *Mount
	seq     uint64
	history []domain.JournalEntry
	now     func() time.Time
	logger  *zap.Logger
	closed  bool
}

type Option func(*Flow)

func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithContext sets the parent of every mount context.
func WithContext(ctx context.Context) Option {
	return func(f *Flow) {
		if ctx != nil {
			f.base = ctx
		}
	}
}

// NewFlow starts a flow mounted at the emotion selection step.
func NewFlow(opts ...Option) *Flow {
	f := &Flow{
		base:   context.Background(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.mountLocked(StepEmotionSelection, NewParams())
	return f
}

func (f *Flow) Current() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mount.Step
}

// Mounted returns the currently mounted screen.
func (f *Flow) Mounted() *Mount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mount
}

func (f *Flow) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mount.Params
}

func (f *Flow) Now() time.Time {
	return f.now()
}

// Navigate moves from the current step to to, carrying params.
func (f *Flow) Navigate(to Step, params Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigateLocked(f.mount, to, params)
}

// navigateFrom transitions only if from is still the mounted screen, so a
// screen that was left cannot move the flow.
func (f *Flow) navigateFrom(from *Mount, to Step, params Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigateLocked(from, to, params)
}

func (f *Flow) navigateLocked(from *Mount, to Step, params Params) error {
	if f.closed {
		return ErrFlowClosed
	}
	if from == nil || from != f.mount {
		return ErrNotMounted
	}

	current, ok := ConfigFor(from.Step)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, from.Step)
	}
	next, ok := ConfigFor(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, to)
	}
	if !current.Allows(to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from.Step, to)
	}

	// Returning to the first step resets the stack.
	if to == StepEmotionSelection {
		params = NewParams()
	}

	bound := params.forStep(to)
	for _, key := range next.Required {
		if err := bound.check(key); err != nil {
			return err
		}
	}

	f.logger.Debug("Wizard transition",
		zap.String("from", string(from.Step)),
		zap.String("to", string(to)),
		zap.Int("params", bound.Len()),
	)

	f.mountLocked(to, bound)
	return nil
}

func (f *Flow) mountLocked(step Step, params Params) {
	if f.mount != nil {
		f.mount.cancel()
	}
	f.seq++
	ctx, cancel := context.WithCancel(f.base)
	f.mount = &Mount{
		Step:   step,
		Params: params.forStep(step),
		seq:    f.seq,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Record adds an entry to the in-session history shown on the profile.
func (f *Flow) Record(entry domain.JournalEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, entry)
}

// History returns a copy of the entries recorded in this session.
func (f *Flow) History() []domain.JournalEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.JournalEntry(nil), f.history...)
}

// Close unmounts the current screen. The flow rejects transitions afterwards.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.mount.cancel()
}

// mountFor returns the mounted screen if it is at step.
func (f *Flow) mountFor(step Step) (*Mount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFlowClosed
	}
	if f.mount.Step != step {
		return nil, fmt.Errorf("%w: %s is mounted, not %s", ErrNotMounted, f.mount.Step, step)
	}
	return f.mount, nil
}
