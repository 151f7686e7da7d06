package engine

import (
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

// View is an immutable snapshot handed to renderers.
type View struct {
	State     State
	Requested string
	Page      schema.Page
	Index     int
	Total     int
	Progress  float64
	Nodes     []Node
	Errors    map[string]string
	CanBack   bool
	IsLast    bool
	Submitted bool
	Payment   PaymentStatus
	// Answers is a copy of every recorded answer, stale ones included.
	Answers answers.Answers
	// PaymentGate is true when advancing this page waits on a payment.
	PaymentGate bool
	Err         error
}

// View captures the current state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		State:     e.state,
		Requested: e.requested,
		Index:     -1,
		Errors:    cloneErrors(e.errors),
		Submitted: e.submitted,
		Payment:   e.payment,
		Answers:   e.answers.Clone(),
		Err:       e.loadErr,
	}
	if e.cfg != nil {
		v.Total = len(e.cfg.Pages)
	}
	if e.state != StateReady {
		return v
	}

	page := e.cfg.Pages[e.index]
	v.Page = page
	v.Index = e.index
	v.Progress = e.progressLocked()
	v.Nodes = e.visibleLocked()
	v.CanBack = e.index > 0
	v.IsLast = e.index == len(e.cfg.Pages)-1
	v.PaymentGate = e.requirePayment && page.IsPayment() && !e.payment.Paid
	return v
}
