// Package payment is the checkout collaborator of an intake session. It
// receives a summary by value, charges it through a Processor and reports
// the outcome through callbacks; it never touches the answer set.
package payment

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Request is what the form hands to checkout. Amount is in major currency
// units.
type Request struct {
	Amount        float64
	Currency      string
	Label         string
	MonthlyPrice  float64
	Duration      string
	PlanKey       string
	PaymentMethod string
}

// MinorUnits returns the amount in the currency's smallest unit.
func (r Request) MinorUnits() int64 {
	return int64(math.Round(r.Amount * 100))
}

// Validate checks the fields every processor needs.
func (r Request) Validate() error {
	if r.Amount <= 0 || math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, r.Amount)
	}
	if strings.TrimSpace(r.Currency) == "" {
		return ErrNoCurrency
	}
	return nil
}

// Result is the processor's confirmation. ID is the opaque token handed to
// the engine.
type Result struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// StatusSucceeded is the status of a completed charge.
const StatusSucceeded = "succeeded"

// Processor charges a request. Implementations must honour ctx cancellation.
type Processor interface {
	Charge(ctx context.Context, req Request) (Result, error)
}

// Processor names accepted by NewProcessor.
const (
	ProcessorSimulated = "simulated"
	ProcessorStripe    = "stripe"
)

// NewProcessor builds a processor by name. An empty name selects the
// simulated processor.
func NewProcessor(name, secretKey string) (Processor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProcessorSimulated:
		return NewSimulatedProcessor(), nil
	case ProcessorStripe:
		return NewStripeProcessor(secretKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, name)
	}
}
