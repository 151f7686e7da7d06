package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/render"
)

// Runner walks an engine page by page, prompting for every visible question
// and forwarding answers to the engine's mutation entry points.
type Runner struct {
	settings
}

// NewRunner builds a runner. The survey driver is used unless one is
// supplied.
func NewRunner(options ...Option) *Runner {
	s := defaultSettings()
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return &Runner{settings: s}
}

// Run drives e until the form is submitted, the user quits or a prompt
// fails. A submitted form returns nil; quitting returns ErrQuit.
func (r *Runner) Run(ctx context.Context, e *engine.Engine) error {
	retry := -1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		view := e.View()
		switch view.State {
		case engine.StateLoading:
			return ErrNotLoaded
		case engine.StateNotFound:
			if err := r.notFound(ctx, e, view); err != nil {
				return err
			}
			retry = -1
		case engine.StateReady:
			next, done, err := r.page(ctx, e, view, view.Index == retry)
			if err != nil || done {
				return err
			}
			retry = next
		}
	}
}

func (r *Runner) options() render.RenderOptions {
	return render.RenderOptions{Locale: r.locale, Translator: r.translator}
}

func (r *Runner) text(id string, data map[string]any) string {
	return locale.Text(r.translator, r.locale, id, data)
}

func (r *Runner) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) warn(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Runner) notFound(ctx context.Context, e *engine.Engine, view engine.View) error {
	nf := render.BuildNotFound(view, r.options())
	if err := r.info(ctx, nf.Title+"\n"+nf.Body); err != nil {
		return err
	}
	if view.Err != nil {
		// A failed load is terminal; there is nothing to restart into.
		_ = r.warn(ctx, nf.Reason)
		return fmt.Errorf("tui: %w", view.Err)
	}

	idx, err := r.choose(ctx, SelectConfig{Message: r.theme.PromptPrefix + nf.Title, Options: []string{nf.Action, "Quit"}})
	if err != nil {
		return err
	}
	if idx != 0 {
		return ErrQuit
	}
	_, err = e.Restart()
	return err
}

// page prompts one pass over the page and then offers navigation. It
// returns the index of the page to revisit in retry mode, where only rows
// with errors are asked again.
func (r *Runner) page(ctx context.Context, e *engine.Engine, view engine.View, retry bool) (int, bool, error) {
	opts := r.options()
	page := render.BuildPage(view, opts)
	if !retry {
		if err := r.header(ctx, page); err != nil {
			return -1, false, err
		}
	}
	if page.IsPayment {
		if err := r.checkout(ctx, e, view); err != nil {
			return -1, false, err
		}
	}

	start := view.Index
	asked := make(map[string]bool)
	for {
		current := e.View()
		if current.State != engine.StateReady || current.Index != start {
			// A single choice advanced the page.
			return -1, false, nil
		}
		row, ok := nextRow(render.BuildPage(current, opts).Rows, asked, retry)
		if !ok {
			break
		}
		asked[row.Code] = true
		if err := r.ask(ctx, e, row); err != nil {
			return -1, false, err
		}
	}

	return r.navigate(ctx, e, render.BuildPage(e.View(), opts))
}

func nextRow(rows []render.Row, asked map[string]bool, retry bool) (render.Row, bool) {
	for _, row := range rows {
		if asked[row.Code] {
			continue
		}
		if retry && row.Error == "" {
			continue
		}
		return row, true
	}
	return render.Row{}, false
}

func (r *Runner) header(ctx context.Context, page render.Page) error {
	lines := []string{fmt.Sprintf("%s [%s]", page.Title, render.ProgressLabel(page.Index, page.Total))}
	if desc := render.StripHTML(page.DescHTML); desc != "" {
		lines = append(lines, desc)
	}
	for _, w := range page.Widgets {
		if text := render.StripHTML(w.HTML); text != "" {
			lines = append(lines, text)
		}
	}
	return r.info(ctx, strings.Join(lines, "\n"))
}

func (r *Runner) ask(ctx context.Context, e *engine.Engine, row render.Row) error {
	if row.Unsupported != "" {
		return r.info(ctx, row.Unsupported)
	}
	if row.Error != "" {
		if err := r.warn(ctx, row.Error); err != nil {
			return err
		}
	}

	message := r.theme.PromptPrefix + strings.Repeat("  ", row.Depth) + row.Label
	switch field.Control(row.Control) {
	case field.ControlInput:
		v, err := r.driver.Input(ctx, InputConfig{Message: message, Default: row.Value, Help: row.Hint})
		if err != nil {
			return err
		}
		return e.Set(ctx, row.Code, answers.Text(strings.TrimSpace(v)))
	case field.ControlTextarea:
		v, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: row.Value, Help: row.Hint})
		if err != nil {
			return err
		}
		return e.Set(ctx, row.Code, answers.Text(v))
	case field.ControlRadio, field.ControlSelect:
		return r.askSingle(ctx, e, row, message)
	case field.ControlCheckbox:
		return r.askMulti(ctx, e, row, message)
	case field.ControlFile:
		return r.askFiles(ctx, e, row, message)
	}
	return nil
}

func (r *Runner) askSingle(ctx context.Context, e *engine.Engine, row render.Row, message string) error {
	if len(row.Options) == 0 {
		return r.info(ctx, message+": -")
	}
	labels := make([]string, len(row.Options))
	selected := 0
	for i, opt := range row.Options {
		labels[i] = choiceLabel(opt)
		if opt.Checked {
			selected = i
		}
	}
	idx, err := r.choose(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: selected,
		Help:         row.Hint,
		Searchable:   row.Control == string(field.ControlSelect),
	})
	if err != nil {
		return err
	}
	outcome, err := e.Choose(ctx, row.Code, row.Options[idx].Value)
	if outcome == engine.OutcomeBlocked {
		return r.blocked(ctx, err)
	}
	return err
}

func (r *Runner) askMulti(ctx context.Context, e *engine.Engine, row render.Row, message string) error {
	labels := make([]string, len(row.Options))
	var defaults []int
	for i, opt := range row.Options {
		labels[i] = choiceLabel(opt)
		if opt.Checked {
			defaults = append(defaults, i)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: row.Hint})
	if err != nil {
		return err
	}

	want := make(map[int]bool, len(picked))
	for _, idx := range picked {
		if idx < 0 || idx >= len(row.Options) {
			return ErrInvalidSelection
		}
		want[idx] = true
	}
	// Unchecks first, then checks in option order, so the exclusive option
	// rule applies to the final selection.
	for i, opt := range row.Options {
		if opt.Checked && !want[i] {
			if _, err := e.Toggle(ctx, row.Code, opt.Value, false); err != nil {
				return err
			}
		}
	}
	for i, opt := range row.Options {
		if want[i] && !opt.Checked {
			if _, err := e.Toggle(ctx, row.Code, opt.Value, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) askFiles(ctx context.Context, e *engine.Engine, row render.Row, message string) error {
	cfg := e.Config()
	if cfg == nil {
		return ErrNotLoaded
	}
	q, ok := cfg.Question(row.Code)
	if !ok {
		return fmt.Errorf("tui: unknown question %s", row.Code)
	}

	help := strings.TrimSpace(strings.Join([]string{row.Hint, row.SizeHint}, " "))
	current := make([]string, len(row.Files))
	for i, f := range row.Files {
		current[i] = f.Path
		if current[i] == "" {
			current[i] = f.Name
		}
	}

	for {
		raw, err := r.driver.Input(ctx, InputConfig{Message: message, Default: strings.Join(current, ", "), Help: help})
		if err != nil {
			return err
		}
		paths := SplitPaths(raw)
		if len(paths) == 0 {
			return e.Set(ctx, row.Code, answers.Files())
		}
		files, err := SelectFiles(q, paths, r.stat, r.text)
		if err == nil {
			return e.Set(ctx, row.Code, answers.Files(files...))
		}
		r.logger.Debug("document selection rejected", zap.String("question", row.Code), zap.Error(err))
		if werr := r.warn(ctx, err.Error()); werr != nil {
			return werr
		}
	}
}

func (r *Runner) navigate(ctx context.Context, e *engine.Engine, page render.Page) (int, bool, error) {
	forward := page.Labels.Next
	if page.IsLast {
		forward = page.Labels.Submit
	}
	actions := []string{forward}
	if page.CanBack {
		actions = append(actions, page.Labels.Back)
	}
	actions = append(actions, "Quit")

	idx, err := r.choose(ctx, SelectConfig{Message: r.theme.PromptPrefix + page.Title, Options: actions})
	if err != nil {
		return -1, false, err
	}
	switch actions[idx] {
	case forward:
		outcome, err := e.Advance(ctx)
		switch outcome {
		case engine.OutcomeSubmitted:
			return -1, true, r.info(ctx, page.Labels.Done)
		case engine.OutcomeBlocked:
			return page.Index, false, r.blocked(ctx, err)
		}
		return -1, false, err
	case "Quit":
		return -1, false, ErrQuit
	default:
		e.Back()
		return -1, false, nil
	}
}

// blocked reports why an advance did not happen. Validation failures carry
// no error; the rows show them on the retry pass.
func (r *Runner) blocked(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrPaymentRequired):
		return r.warn(ctx, r.text(locale.PaymentRequired, nil))
	default:
		return r.warn(ctx, err.Error())
	}
}

func (r *Runner) checkout(ctx context.Context, e *engine.Engine, view engine.View) error {
	if view.Payment.Paid {
		return r.info(ctx, r.text(locale.PaymentSuccess, nil))
	}

	plans := payment.Plans()
	current := payment.SummaryFromAnswers(view.Answers, r.currency)
	labels := make([]string, len(plans))
	selected := 0
	for i, p := range plans {
		labels[i] = planLabel(p)
		if p.Key == current.PlanKey {
			selected = i
		}
	}
	idx, err := r.choose(ctx, SelectConfig{Message: r.theme.PromptPrefix + view.Page.Title, Options: labels, DefaultIndex: selected})
	if err != nil {
		return err
	}
	if err := e.SetMany(ctx, payment.SelectionAnswers(plans[idx])); err != nil {
		return err
	}
	if r.processor == nil {
		return nil
	}

	req := payment.SummaryFromAnswers(e.Answers(), r.currency)
	pay, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Pay %.2f %s now?", req.Amount, strings.ToUpper(req.Currency)), Default: true})
	if err != nil || !pay {
		return err
	}

	co := payment.NewCheckout(r.processor, payment.ReportTo(e), payment.WithLogger(r.logger))
	defer co.Close()
	if err := r.info(ctx, r.text(locale.PaymentProcessing, nil)); err != nil {
		return err
	}
	if err := co.Submit(ctx, req); err != nil {
		return r.warn(ctx, r.text(locale.PaymentFailed, map[string]any{"Reason": err.Error()}))
	}
	co.Wait()
	if co.Status() == payment.StatusSuccess {
		return r.info(ctx, r.text(locale.PaymentSuccess, nil))
	}
	reason := "unknown error"
	if err := co.Err(); err != nil {
		reason = err.Error()
	}
	return r.warn(ctx, r.text(locale.PaymentFailed, map[string]any{"Reason": reason}))
}

func (r *Runner) choose(ctx context.Context, cfg SelectConfig) (int, error) {
	idx, err := r.driver.Select(ctx, cfg)
	if err != nil {
		return -1, err
	}
	if idx < 0 || idx >= len(cfg.Options) {
		return -1, ErrInvalidSelection
	}
	return idx, nil
}

func choiceLabel(opt render.Choice) string {
	if opt.Sublabel != "" {
		return opt.Label + " (" + opt.Sublabel + ")"
	}
	return opt.Label
}

func planLabel(p payment.Plan) string {
	label := fmt.Sprintf("%s: %s/month, %s total", p.Label, money(p.MonthlyPrice), money(p.TotalPrice))
	switch {
	case p.BestValue:
		label += " [best value]"
	case p.Popular:
		label += " [popular]"
	}
	return label
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
