package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SimulatedProcessor approves every valid request after an optional delay.
// It stands in for a hosted processor in demos and tests.
type SimulatedProcessor struct {
	Delay time.Duration
	// Decline, when set, is returned instead of a confirmation.
	Decline error

	newID func() string
}

// NewSimulatedProcessor returns a processor that confirms immediately.
func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{newID: uuid.NewString}
}

func (p *SimulatedProcessor) Charge(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if p.Decline != nil {
		return Result{}, p.Decline
	}

	newID := p.newID
	if newID == nil {
		newID = uuid.NewString
	}
	return Result{
		ID:       "pi_demo_" + newID(),
		Status:   StatusSucceeded,
		Amount:   req.MinorUnits(),
		Currency: req.Currency,
	}, nil
}
