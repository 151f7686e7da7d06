// Package engine drives a multi-page intake form: it tracks the current page,
// the answer set and the error set, derives follow-up visibility and
// progress, and gates page transitions on validation.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/validation"
)

// State is the engine's position in its lifecycle.
type State int

const (
	// StateLoading precedes a successful config load and page resolution.
	StateLoading State = iota
	// StateNotFound is entered when the requested page is unknown or the
	// config failed to load. Only explicit navigation leaves it.
	StateNotFound
	// StateReady means a page is active.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNotFound:
		return "not_found"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine is safe for concurrent use; every call runs to completion before the
// next one starts.
type Engine struct {
	mu sync.Mutex

	store          answers.Store
	validator      Validator
	kinds          *field.Registry
	logger         *zap.Logger
	autoAdvance    bool
	requirePayment bool
	onSubmit       SubmitHook

	cfg       *schema.Config
	state     State
	index     int
	requested string
	loadErr   error
	seeded    bool

	answers   answers.Answers
	errors    map[string]string
	payment   PaymentStatus
	submitted bool
}

// PaymentStatus is what the engine knows about the payment collaborator's
// last report.
type PaymentStatus struct {
	Paid  bool
	Token string
	Err   string
}

// New returns an engine in the loading state.
func New(options ...Option) *Engine {
	e := &Engine{
		store:       answers.NewMemoryStore(),
		validator:   validation.New(),
		kinds:       field.NewRegistry(),
		logger:      zap.NewNop(),
		autoAdvance: true,
		state:       StateLoading,
		answers:     answers.Answers{},
		errors:      make(map[string]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Load fetches the config through loader and opens code. A fetch or parse
// failure moves the engine to the not-found state.
func (e *Engine) Load(ctx context.Context, loader schema.Loader, src schema.Source, code string) State {
	cfg, err := loader.Load(ctx, src)
	if err != nil {
		e.Fail(err)
		return e.State()
	}
	return e.Init(ctx, cfg, code)
}

// Init installs a loaded config, seeds the answers from the store on first
// use and resolves code. An empty code opens the first page.
func (e *Engine) Init(ctx context.Context, cfg *schema.Config, code string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg == nil || len(cfg.Pages) == 0 {
		e.failLocked(schema.ErrNoPages)
		return e.state
	}
	sorted := cfg.Sorted()
	e.cfg = &sorted
	e.loadErr = nil

	if !e.seeded {
		e.answers = answers.LoadOrEmpty(ctx, e.store, e.logger)
		e.seeded = true
		e.logger.Debug("answers restored", zap.Int("count", len(e.answers)))
	}

	if code == "" {
		code = e.cfg.Pages[0].Code
	}
	e.openLocked(code)
	return e.state
}

// Fail records a config load failure. The engine stays in the not-found
// state until a config is installed.
func (e *Engine) Fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failLocked(err)
}

func (e *Engine) failLocked(err error) {
	e.cfg = nil
	e.state = StateNotFound
	e.loadErr = err
	e.logger.Warn("form config unavailable", zap.Error(err))
}

// GoTo routes to the page with the given code. Unknown codes enter the
// not-found state.
func (e *Engine) GoTo(code string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return e.state, ErrNoConfig
	}
	e.openLocked(code)
	if e.state == StateNotFound {
		return e.state, fmt.Errorf("%w: %q", ErrPageNotFound, code)
	}
	return e.state, nil
}

// Restart is the not-found recovery action: it opens the first page.
func (e *Engine) Restart() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg == nil {
		return e.state, ErrNoConfig
	}
	e.openLocked(e.cfg.Pages[0].Code)
	return e.state, nil
}

func (e *Engine) openLocked(code string) {
	e.requested = code
	idx, ok := e.cfg.PageIndex(code)
	if !ok {
		e.state = StateNotFound
		e.logger.Debug("page not found", zap.String("page", code))
		return
	}
	e.moveLocked(idx)
}

func (e *Engine) moveLocked(idx int) {
	e.state = StateReady
	e.index = idx
	e.requested = e.cfg.Pages[idx].Code
	// errors belong to the page they were computed for
	e.errors = make(map[string]string)
	e.logger.Debug("page opened",
		zap.String("page", e.requested),
		zap.Int("index", idx),
	)
}

// State reports the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the config load failure, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Config returns the sorted config, or nil before one is installed.
func (e *Engine) Config() *schema.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Page returns the active page.
func (e *Engine) Page() (schema.Page, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return schema.Page{}, false
	}
	return e.cfg.Pages[e.index], true
}

// Index returns the active page position, or -1 outside the ready state.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return -1
	}
	return e.index
}

// Progress returns (index+1)/pages for the active page and 0 otherwise.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *Engine) progressLocked() float64 {
	if e.state != StateReady || e.cfg == nil || len(e.cfg.Pages) == 0 {
		return 0
	}
	return float64(e.index+1) / float64(len(e.cfg.Pages))
}

// Answers returns a copy of the answer set.
func (e *Engine) Answers() answers.Answers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Clone()
}

// Value returns the current answer for code.
func (e *Engine) Value(code string) answers.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Get(code)
}

// Errors returns a copy of the error set.
func (e *Engine) Errors() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneErrors(e.errors)
}

// Submitted reports whether the last page was submitted successfully.
func (e *Engine) Submitted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitted
}

// Kinds returns the kind registry renderers should resolve controls with.
func (e *Engine) Kinds() *field.Registry {
	return e.kinds
}

func cloneErrors(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
