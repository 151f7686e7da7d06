package engine

import "errors"

var (
	// ErrNotReady is returned by mutations and navigation outside the ready state.
	ErrNotReady = errors.New("engine: no page is active")
	// ErrNoConfig is returned when navigation is attempted before a config loaded.
	ErrNoConfig = errors.New("engine: config not loaded")
	// ErrPageNotFound reports an unknown page code.
	ErrPageNotFound = errors.New("engine: page not found")
	// ErrUnknownQuestion is returned when a choice targets a code the config
	// does not declare.
	ErrUnknownQuestion = errors.New("engine: unknown question")
	// ErrUnknownOption is returned when a choice is not one of the question's options.
	ErrUnknownOption = errors.New("engine: unknown option")
	// ErrNotMultiChoice is returned when Toggle targets a single-value question.
	ErrNotMultiChoice = errors.New("engine: question is not multi-choice")
	// ErrShapeMismatch is returned when a value does not fit the question kind.
	ErrShapeMismatch = errors.New("engine: value does not fit question kind")
	// ErrPaymentRequired blocks advancing past an unpaid payment page.
	ErrPaymentRequired = errors.New("engine: payment required before advancing")
)
