package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Validator produces at most one message for a question's answer.
type Validator interface {
	Validate(q schema.Question, v answers.Value) (string, bool)
}

// SubmitHook receives the accumulated answers when the last page advances.
// It runs while the engine is locked and must not call back into it.
type SubmitHook func(ctx context.Context, a answers.Answers) error

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the answer persistence port. Defaults to an in-memory store.
func WithStore(store answers.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithValidator overrides the validation engine.
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithKinds overrides the kind registry.
func WithKinds(reg *field.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.kinds = reg
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAutoAdvance toggles advancing when a single-choice answer is picked.
// Enabled by default.
func WithAutoAdvance(enabled bool) Option {
	return func(e *Engine) {
		e.autoAdvance = enabled
	}
}

// WithRequirePayment blocks advancing past payment pages until a payment
// succeeded. Disabled by default.
func WithRequirePayment(required bool) Option {
	return func(e *Engine) {
		e.requirePayment = required
	}
}

// WithSubmitHook sets the action run when the last page advances.
func WithSubmitHook(hook SubmitHook) Option {
	return func(e *Engine) {
		e.onSubmit = hook
	}
}
