package payment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/engine"
)

// Status is the checkout widget's own display state.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Checkout runs charges asynchronously and reports each outcome once through
// its callbacks. Callbacks run on the charge goroutine.
type Checkout struct {
	processor Processor
	logger    *zap.Logger
	onSuccess func(Result)
	onFailure func(error)

	mu     sync.Mutex
	status Status
	result Result
	err    error
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CheckoutOption configures a Checkout.
type CheckoutOption func(*Checkout)

// OnSuccess registers the confirmation callback.
func OnSuccess(fn func(Result)) CheckoutOption {
	return func(c *Checkout) { c.onSuccess = fn }
}

// OnFailure registers the failure callback.
func OnFailure(fn func(error)) CheckoutOption {
	return func(c *Checkout) { c.onFailure = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) CheckoutOption {
	return func(c *Checkout) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// ReportTo forwards outcomes to an engine so its payment gate can open.
func ReportTo(e *engine.Engine) CheckoutOption {
	return func(c *Checkout) {
		c.onSuccess = func(r Result) { e.PaymentSucceeded(r.ID) }
		c.onFailure = e.PaymentFailed
	}
}

// NewCheckout returns an idle checkout. A nil processor selects the
// simulated one.
func NewCheckout(processor Processor, options ...CheckoutOption) *Checkout {
	if processor == nil {
		processor = NewSimulatedProcessor()
	}
	c := &Checkout{processor: processor, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Submit starts a charge and returns immediately. Invalid requests fail
// synchronously without touching the status.
func (c *Checkout) Submit(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.status == StatusProcessing {
		c.mu.Unlock()
		return ErrInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	c.status = StatusProcessing
	c.result = Result{}
	c.err = nil
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("charge started",
		zap.String("plan", req.PlanKey),
		zap.Int64("amount", req.MinorUnits()),
		zap.String("currency", req.Currency),
	)
	go c.run(ctx, cancel, req)
	return nil
}

func (c *Checkout) run(ctx context.Context, cancel context.CancelFunc, req Request) {
	defer c.wg.Done()
	defer cancel()

	res, err := c.processor.Charge(ctx, req)

	c.mu.Lock()
	if err != nil {
		c.status = StatusError
		c.err = err
	} else {
		c.status = StatusSuccess
		c.result = res
	}
	c.cancel = nil
	onSuccess, onFailure := c.onSuccess, c.onFailure
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("charge failed", zap.String("plan", req.PlanKey), zap.Error(err))
		if onFailure != nil {
			onFailure(err)
		}
		return
	}
	c.logger.Info("charge confirmed", zap.String("id", res.ID), zap.String("plan", req.PlanKey))
	if onSuccess != nil {
		onSuccess(res)
	}
}

// Wait blocks until no charge is running.
func (c *Checkout) Wait() {
	c.wg.Wait()
}

// Close cancels a running charge and waits for it to report.
func (c *Checkout) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// Status returns the display state.
func (c *Checkout) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Result returns the last confirmation.
func (c *Checkout) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Err returns the last failure.
func (c *Checkout) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
