// Package webform serves an intake form over HTTP. Each browser session owns
// an engine; pages are drawn by the orchestrator's HTML renderer and posted
// back as plain form submissions, so no client script is required.
package webform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/html"
	"github.com/goliatone/go-intake/pkg/schema"
)

// CookieName carries the session id.
const CookieName = "intake_session"

const defaultMaxMemory = 32 << 20

// Form actions posted in the _action field.
const (
	ActionNext    = "next"
	ActionBack    = "back"
	ActionPay     = "pay"
	ActionRestart = "restart"
	ActionReset   = "reset"
)

// Handler is an http.Handler hosting one form for many sessions.
type Handler struct {
	orch      *orchestrator.Orchestrator
	source    schema.Source
	stores    StoreFactory
	onSubmit  SubmitFunc
	processor payment.Processor
	currency  string
	locale    string
	renderer  string
	basePath  string
	maxMemory int64
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id     string
	engine *engine.Engine

	mu     sync.Mutex
	notice string
}

func (s *session) flash(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

func (s *session) takeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.notice
	s.notice = ""
	return msg
}

// New returns a handler serving the form at src through orch.
func New(orch *orchestrator.Orchestrator, src schema.Source, options ...Option) *Handler {
	h := &Handler{
		orch:   orch,
		source: src,
		stores: func(context.Context, string) (answers.Store, error) {
			return answers.NewMemoryStore(), nil
		},
		processor: payment.NewSimulatedProcessor(),
		currency:  payment.DefaultCurrency,
		renderer:  html.Name,
		basePath:  "/",
		maxMemory: defaultMaxMemory,
		logger:    zap.NewNop(),
		sessions:  make(map[string]*session),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.orch == nil {
		h.orch = orchestrator.New(orchestrator.WithLogger(h.logger))
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.show(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.logger.Error("open session", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if code := r.URL.Query().Get("page"); code != "" {
		if _, err := sess.engine.GoTo(code); err != nil {
			h.logger.Debug("go to page", zap.String("page", code), zap.Error(err))
		}
	}

	query := r.URL.Query()
	out, err := h.orch.Render(r.Context(), sess.engine, orchestrator.Request{
		Renderer:     h.renderer,
		ThemeName:    query.Get("theme"),
		ThemeVariant: query.Get("variant"),
		RenderOptions: render.RenderOptions{
			Locale: h.locale,
			Action: h.basePath,
			Notice: sess.takeNotice(),
		},
	})
	if err != nil {
		h.logger.Error("render page", zap.String("session", sess.id), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	if renderer, err := h.orch.Registry().Get(h.renderer); err == nil {
		w.Header().Set("Content-Type", renderer.ContentType())
	}
	w.Header().Set("Cache-Control", "no-store")
	if sess.engine.State() == engine.StateNotFound {
		w.WriteHeader(http.StatusNotFound)
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(out); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		h.logger.Error("open session", zap.Error(err))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := parseForm(r, h.maxMemory); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	action := r.PostFormValue("_action")
	if action != ActionRestart && action != ActionReset && stale(sess.engine, r) {
		h.logger.Debug("stale post dropped",
			zap.String("session", sess.id),
			zap.String("posted", r.PostFormValue(render.PageField)),
		)
		http.Redirect(w, r, h.basePath, http.StatusSeeOther)
		return
	}
	if action != ActionRestart && action != ActionReset {
		shown := visibleCodes(sess.engine)
		if msg := h.apply(ctx, sess.engine, r); msg != "" {
			sess.flash(msg)
			action = ""
		}
		if action == ActionNext && revealed(shown, sess.engine) {
			h.logger.Debug("follow-ups revealed, holding page", zap.String("session", sess.id))
			action = ""
		}
	}
	h.act(ctx, sess, action)
	http.Redirect(w, r, h.basePath, http.StatusSeeOther)
}

func visibleCodes(e *engine.Engine) map[string]bool {
	codes := map[string]bool{}
	for _, node := range engine.Flatten(e.Visible()) {
		codes[node.Question.Code] = true
	}
	return codes
}

// revealed reports questions that became visible after the post was applied.
// The user has not seen them yet, so advancing would flag them at once.
func revealed(shown map[string]bool, e *engine.Engine) bool {
	for code := range visibleCodes(e) {
		if !shown[code] {
			return true
		}
	}
	return false
}

// stale reports a post made from a page other than the current one, for
// example from a second tab left behind.
func stale(e *engine.Engine, r *http.Request) bool {
	posted := r.PostFormValue(render.PageField)
	if posted == "" {
		return false
	}
	page, ok := e.Page()
	return !ok || page.Code != posted
}

func (h *Handler) act(ctx context.Context, sess *session, action string) {
	e := sess.engine
	switch action {
	case "":
	case ActionBack:
		e.Back()
	case ActionRestart:
		if _, err := e.Restart(); err != nil {
			h.logger.Debug("restart", zap.Error(err))
		}
	case ActionReset:
		if err := e.Reset(ctx); err != nil {
			h.logger.Warn("reset answers", zap.String("session", sess.id), zap.Error(err))
		}
		if _, err := e.Restart(); err != nil {
			h.logger.Debug("restart after reset", zap.Error(err))
		}
	case ActionPay:
		h.pay(ctx, e)
	default:
		outcome, err := e.Advance(ctx)
		if outcome == engine.OutcomeBlocked && err != nil {
			if errors.Is(err, engine.ErrPaymentRequired) {
				sess.flash(locale.Text(nil, h.locale, locale.PaymentRequired, nil))
			} else {
				sess.flash(err.Error())
			}
		}
	}
}

// pay charges the recorded plan and waits for the outcome; the engine's
// payment status carries the result into the next render.
func (h *Handler) pay(ctx context.Context, e *engine.Engine) {
	if e.Paid() {
		return
	}
	co := payment.NewCheckout(h.processor, payment.ReportTo(e), payment.WithLogger(h.logger))
	req := payment.SummaryFromAnswers(e.Answers(), h.currency)
	if err := co.Submit(ctx, req); err != nil {
		e.PaymentFailed(err)
		return
	}
	co.Wait()
}

// session finds the caller's session or starts one, setting the cookie.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		h.mu.Lock()
		sess, ok := h.sessions[c.Value]
		h.mu.Unlock()
		if ok {
			return sess, nil
		}
	}

	id := uuid.NewString()
	sess, err := h.open(r.Context(), id)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Debug("session started", zap.String("session", id))
	return sess, nil
}

func (h *Handler) open(ctx context.Context, id string) (*session, error) {
	store, err := h.stores(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("webform: open store: %w", err)
	}
	options := []engine.Option{engine.WithStore(store)}
	if h.onSubmit != nil {
		submit := h.onSubmit
		options = append(options, engine.WithSubmitHook(func(ctx context.Context, a answers.Answers) error {
			return submit(ctx, id, a)
		}))
	}
	e, err := h.orch.Open(ctx, orchestrator.Request{Source: h.source, EngineOptions: options})
	if err != nil {
		return nil, err
	}
	return &session{id: id, engine: e}, nil
}

// Sessions reports how many sessions are live.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
