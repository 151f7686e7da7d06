package payment

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/answers"
)

// Plan is one purchasable treatment plan.
type Plan struct {
	Key           string
	Label         string
	MonthlyPrice  float64
	TotalPrice    float64
	OriginalPrice float64
	Savings       float64
	Duration      string
	Description   string
	Popular       bool
	BestValue     bool
}

// DefaultPlanKey is used when no selection was recorded.
const DefaultPlanKey = "6month"

// DefaultCurrency is charged when the caller does not pick one.
const DefaultCurrency = "usd"

// Answer codes written when a plan is selected.
const (
	AnswerPlanKey      = "checkout_option_key"
	AnswerPlanLabel    = "checkout_option_label"
	AnswerMonthlyPrice = "checkout_option_monthly_price"
	AnswerTotalPrice   = "checkout_option_total_price"
	AnswerDuration     = "checkout_option_duration"
)

var plans = []Plan{
	{
		Key: "12month", Label: "12 Monthly", MonthlyPrice: 37, TotalPrice: 444,
		OriginalPrice: 588, Savings: 144, Duration: "12 months", BestValue: true,
		Description: "Best value for long-term weight management success.",
	},
	{
		Key: "6month", Label: "6 Monthly", MonthlyPrice: 43, TotalPrice: 258,
		OriginalPrice: 294, Savings: 36, Duration: "6 months", Popular: true,
		Description: "Popular choice for sustainable weight loss results.",
	},
	{
		Key: "3month", Label: "3 Monthly", MonthlyPrice: 49, TotalPrice: 147,
		OriginalPrice: 147, Duration: "3 months",
		Description: "Get started with our shortest commitment period.",
	},
}

// Plans returns the catalogue, longest commitment first.
func Plans() []Plan {
	return append([]Plan(nil), plans...)
}

// LookupPlan finds a plan by key.
func LookupPlan(key string) (Plan, bool) {
	key = strings.TrimSpace(key)
	for _, p := range plans {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}

// DefaultPlan returns the plan preselected on the checkout page.
func DefaultPlan() Plan {
	p, _ := LookupPlan(DefaultPlanKey)
	return p
}

// SelectionAnswers returns the answers recorded when p is chosen.
func SelectionAnswers(p Plan) answers.Answers {
	return answers.Answers{
		AnswerPlanKey:      answers.Text(p.Key),
		AnswerPlanLabel:    answers.Text(p.Label),
		AnswerMonthlyPrice: answers.Text(formatPrice(p.MonthlyPrice)),
		AnswerTotalPrice:   answers.Text(formatPrice(p.TotalPrice)),
		AnswerDuration:     answers.Text(p.Duration),
	}
}

// SummaryFromAnswers derives the checkout request from recorded answers. A
// complete recorded selection wins, then a recorded plan key, then the
// default plan.
func SummaryFromAnswers(a answers.Answers, currency string) Request {
	if currency == "" {
		currency = DefaultCurrency
	}

	total, okTotal := parsePrice(a.Get(AnswerTotalPrice).Text())
	monthly, okMonthly := parsePrice(a.Get(AnswerMonthlyPrice).Text())
	label := a.Get(AnswerPlanLabel).Text()
	duration := a.Get(AnswerDuration).Text()
	key := a.Get(AnswerPlanKey).Text()
	if okTotal && okMonthly && label != "" && duration != "" {
		return Request{
			Amount: total, Currency: currency, Label: label,
			MonthlyPrice: monthly, Duration: duration, PlanKey: key,
		}
	}

	plan, ok := LookupPlan(key)
	if !ok {
		plan = DefaultPlan()
	}
	return PlanRequest(plan, currency)
}

// PlanRequest builds the checkout request for a catalogue plan.
func PlanRequest(p Plan, currency string) Request {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Request{
		Amount:       p.TotalPrice,
		Currency:     currency,
		Label:        p.Label,
		MonthlyPrice: p.MonthlyPrice,
		Duration:     p.Duration,
		PlanKey:      p.Key,
	}
}

func parsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
