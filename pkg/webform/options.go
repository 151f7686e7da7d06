package webform

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/payment"
)

// StoreFactory opens the answer store backing one browser session.
type StoreFactory func(ctx context.Context, session string) (answers.Store, error)

// SubmitFunc receives a session's answers when its form is submitted.
type SubmitFunc func(ctx context.Context, session string, submitted answers.Answers) error

// Option configures a Handler.
type Option func(*Handler)

// WithStoreFactory sets how per-session stores are opened. Sessions use
// in-memory stores by default.
func WithStoreFactory(factory StoreFactory) Option {
	return func(h *Handler) {
		if factory != nil {
			h.stores = factory
		}
	}
}

// WithSubmit registers the submission callback.
func WithSubmit(fn SubmitFunc) Option {
	return func(h *Handler) {
		h.onSubmit = fn
	}
}

// WithProcessor sets the payment processor used by the pay action.
func WithProcessor(p payment.Processor) Option {
	return func(h *Handler) {
		if p != nil {
			h.processor = p
		}
	}
}

// WithCurrency sets the charge currency.
func WithCurrency(currency string) Option {
	return func(h *Handler) {
		if currency != "" {
			h.currency = currency
		}
	}
}

// WithLocale selects the message language.
func WithLocale(tag string) Option {
	return func(h *Handler) {
		h.locale = tag
	}
}

// WithRenderer names the registered renderer pages are drawn with.
func WithRenderer(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.renderer = name
		}
	}
}

// WithBasePath sets the path the handler is mounted on. It becomes the form
// action and the redirect target.
func WithBasePath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.basePath = path
		}
	}
}

// WithMaxUploadMemory caps multipart parsing memory.
func WithMaxUploadMemory(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxMemory = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}
