package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// intentCreator is the slice of the Stripe client the processor uses.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProcessor confirms a PaymentIntent for the request's payment method.
type StripeProcessor struct {
	intents intentCreator
}

// NewStripeProcessor builds a processor backed by the Stripe API.
func NewStripeProcessor(secretKey string) (*StripeProcessor, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNoSecretKey
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProcessor{intents: sc.PaymentIntents}, nil
}

func (p *StripeProcessor) Charge(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if req.PaymentMethod == "" {
		return Result{}, ErrNoPaymentMethod
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.MinorUnits()),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(req.PaymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	if req.Label != "" {
		params.Description = stripe.String(req.Label)
	}
	params.Context = ctx
	if req.PlanKey != "" {
		params.AddMetadata("plan", req.PlanKey)
	}
	if req.Duration != "" {
		params.AddMetadata("duration", req.Duration)
	}
	if req.MonthlyPrice > 0 {
		params.AddMetadata("monthly_price", strconv.FormatFloat(req.MonthlyPrice, 'f', -1, 64))
	}

	pi, err := p.intents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Msg != "" {
			return Result{}, fmt.Errorf("payment: stripe: %s: %w", serr.Msg, err)
		}
		return Result{}, fmt.Errorf("payment: stripe: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Result{}, fmt.Errorf("%w: status %s", ErrNotSucceeded, pi.Status)
	}
	return Result{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}, nil
}
