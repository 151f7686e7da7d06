package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Set stores an answer, clears that field's error and persists the snapshot.
// Codes the config does not declare are stored as-is, which is how derived
// answers such as the chosen plan are recorded.
func (e *Engine) Set(ctx context.Context, code string, v answers.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(ctx, code, v)
}

func (e *Engine) setLocked(ctx context.Context, code string, v answers.Value) error {
	if e.state != StateReady {
		return ErrNotReady
	}
	if q, ok := e.questionLocked(code); ok {
		if h := e.kinds.Resolve(q.Type); !h.Accepts(v) {
			return fmt.Errorf("%w: %s holds %s, got %s", ErrShapeMismatch, code, h.Shape, v.Kind())
		}
	}

	e.answers[code] = v
	delete(e.errors, code)
	e.persistLocked(ctx)
	return nil
}

// questionLocked resolves a code against the active page first, since codes
// are only unique within a page, then against the rest of the config.
func (e *Engine) questionLocked(code string) (schema.Question, bool) {
	if e.state == StateReady && e.index >= 0 && e.index < len(e.cfg.Pages) {
		if q, ok := schema.FindQuestion(e.cfg.Pages[e.index].Questions, code); ok {
			return q, true
		}
	}
	return e.cfg.Question(code)
}

// SetMany stores several answers with a single persistence write.
func (e *Engine) SetMany(ctx context.Context, values answers.Answers) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return ErrNotReady
	}
	for code, v := range values {
		if q, ok := e.questionLocked(code); ok && !e.kinds.Resolve(q.Type).Accepts(v) {
			return fmt.Errorf("%w: %s", ErrShapeMismatch, code)
		}
	}
	for code, v := range values {
		e.answers[code] = v
		delete(e.errors, code)
	}
	e.persistLocked(ctx)
	return nil
}

// Toggle checks or unchecks one option of a multi-choice question. Checking
// an exclusive option ("none of the above") leaves it as the only selection;
// checking any other option drops exclusive ones.
func (e *Engine) Toggle(ctx context.Context, code, value string, checked bool) (answers.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return answers.Value{}, ErrNotReady
	}
	q, ok := e.questionLocked(code)
	if !ok {
		return answers.Value{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, code)
	}
	if e.kinds.Resolve(q.Type).Shape != answers.List {
		return answers.Value{}, fmt.Errorf("%w: %s", ErrNotMultiChoice, code)
	}
	opt, ok := q.Option(value)
	if !ok {
		return answers.Value{}, fmt.Errorf("%w: %s=%q", ErrUnknownOption, code, value)
	}

	next := toggleSelection(q, e.answers.Get(code).Strings(), opt, checked)
	if err := e.setLocked(ctx, code, next); err != nil {
		return answers.Value{}, err
	}
	return next, nil
}

func toggleSelection(q schema.Question, current []string, opt schema.Option, checked bool) answers.Value {
	if !checked {
		kept := make([]string, 0, len(current))
		for _, v := range current {
			if v != opt.Value {
				kept = append(kept, v)
			}
		}
		return answers.Strings(kept...)
	}

	if opt.Exclusive() {
		return answers.Strings(opt.Value)
	}

	kept := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v == opt.Value {
			continue
		}
		if other, ok := q.Option(v); ok && other.Exclusive() {
			continue
		}
		kept = append(kept, v)
	}
	kept = append(kept, opt.Value)
	return answers.Strings(kept...)
}

// Choose records a single-choice answer. When auto-advance is on and the
// chosen value does not reveal the question's follow-ups, it advances as if
// the user had pressed next.
func (e *Engine) Choose(ctx context.Context, code, value string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return OutcomeNone, ErrNotReady
	}
	q, ok := e.questionLocked(code)
	if !ok {
		return OutcomeNone, fmt.Errorf("%w: %s", ErrUnknownQuestion, code)
	}
	if len(q.Options) > 0 {
		if _, ok := q.Option(value); !ok {
			return OutcomeNone, fmt.Errorf("%w: %s=%q", ErrUnknownOption, code, value)
		}
	}
	if err := e.setLocked(ctx, code, answers.Text(value)); err != nil {
		return OutcomeNone, err
	}

	if !e.autoAdvance || !e.kinds.Resolve(q.Type).AutoAdvance {
		return OutcomeNone, nil
	}
	if q.ShowFollowupWhen != "" && value == q.ShowFollowupWhen {
		e.logger.Debug("auto-advance held for follow-up", zap.String("question", code))
		return OutcomeNone, nil
	}
	return e.advanceLocked(ctx)
}

// Reset discards every answer and error and clears the persisted snapshot.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.answers = answers.Answers{}
	e.errors = make(map[string]string)
	e.submitted = false
	e.payment = PaymentStatus{}
	if err := e.store.Clear(ctx); err != nil {
		e.logger.Warn("clearing persisted answers failed", zap.Error(err))
		return err
	}
	return nil
}

func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.store.Save(ctx, e.answers.Clone()); err != nil {
		e.logger.Warn("persisting answers failed", zap.Error(err))
	}
}
