package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Outcome reports what an advance attempt did.
type Outcome int

const (
	// OutcomeNone means no transition was attempted.
	OutcomeNone Outcome = iota
	// OutcomeAdvanced means the next page is active.
	OutcomeAdvanced
	// OutcomeSubmitted means the last page was submitted.
	OutcomeSubmitted
	// OutcomeBlocked means the page stayed active; see Errors or the
	// returned error.
	OutcomeBlocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "none"
	}
}

// Advance validates the active page's visible questions and moves to the next
// page, or submits on the last page. Validation failures block with a nil
// error and populate Errors.
func (e *Engine) Advance(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceLocked(ctx)
}

func (e *Engine) advanceLocked(ctx context.Context) (Outcome, error) {
	if e.state != StateReady {
		return OutcomeNone, ErrNotReady
	}
	page := e.cfg.Pages[e.index]

	e.errors = e.validateLocked()
	if len(e.errors) > 0 {
		e.logger.Debug("advance blocked by validation",
			zap.String("page", page.Code),
			zap.Int("errors", len(e.errors)),
		)
		return OutcomeBlocked, nil
	}

	if e.requirePayment && page.IsPayment() && !e.payment.Paid {
		e.logger.Debug("advance blocked until payment succeeds", zap.String("page", page.Code))
		return OutcomeBlocked, ErrPaymentRequired
	}

	if e.index < len(e.cfg.Pages)-1 {
		e.moveLocked(e.index + 1)
		return OutcomeAdvanced, nil
	}

	if e.onSubmit != nil {
		if err := e.onSubmit(ctx, e.answers.Clone()); err != nil {
			e.logger.Warn("submission failed", zap.Error(err))
			return OutcomeBlocked, fmt.Errorf("engine: submit: %w", err)
		}
	}
	e.submitted = true
	e.logger.Info("form submitted", zap.Int("answers", len(e.answers)))
	return OutcomeSubmitted, nil
}

// Back moves to the previous page without validating. It is a no-op on the
// first page and outside the ready state.
func (e *Engine) Back() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady || e.index == 0 {
		return false
	}
	e.moveLocked(e.index - 1)
	return true
}

// Validate recomputes the error set for the active page without navigating.
func (e *Engine) Validate() (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return nil, ErrNotReady
	}
	e.errors = e.validateLocked()
	return cloneErrors(e.errors), nil
}

func (e *Engine) validateLocked() map[string]string {
	out := make(map[string]string)
	for _, q := range flattenNodes(e.visibleLocked()) {
		if msg, failed := e.validator.Validate(q.Question, q.Value); failed {
			out[q.Question.Code] = msg
		}
	}
	return out
}

// PaymentSucceeded records a confirmation token from the payment collaborator.
func (e *Engine) PaymentSucceeded(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payment = PaymentStatus{Paid: true, Token: token}
	e.logger.Info("payment confirmed", zap.String("token", token))
}

// PaymentFailed records a failure report. It never touches the error set or
// navigation.
func (e *Engine) PaymentFailed(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	e.payment = PaymentStatus{Err: msg}
	e.logger.Warn("payment failed", zap.Error(err))
}

// Payment returns the last payment report.
func (e *Engine) Payment() PaymentStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payment
}

// Paid reports whether a payment succeeded in this session.
func (e *Engine) Paid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payment.Paid
}
