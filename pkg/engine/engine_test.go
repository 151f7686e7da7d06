package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func newReady(t *testing.T, code string, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	if state := e.Init(context.Background(), testsupport.IntakeConfig(t), code); state != StateReady {
		t.Fatalf("Init(%q) state = %s", code, state)
	}
	return e
}

func mustSet(t *testing.T, e *Engine, code string, v answers.Value) {
	t.Helper()
	if err := e.Set(context.Background(), code, v); err != nil {
		t.Fatalf("Set(%s): %v", code, err)
	}
}

func currentCode(t *testing.T, e *Engine) string {
	t.Helper()
	page, ok := e.Page()
	if !ok {
		t.Fatalf("no active page (state %s)", e.State())
	}
	return page.Code
}

func TestInit_WalkOrderAndFirstPage(t *testing.T) {
	e := newReady(t, "")

	var codes []string
	for _, p := range e.Config().Pages {
		codes = append(codes, p.Code)
	}
	want := []string{"about", "health", "lifestyle", "documents", "checkout", "review"}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
	if currentCode(t, e) != "about" || e.Index() != 0 {
		t.Fatalf("expected first page, got %s/%d", currentCode(t, e), e.Index())
	}
	if got := e.Progress(); got != 1.0/6.0 {
		t.Fatalf("progress = %v", got)
	}
}

func TestInit_UnknownPageAndRecovery(t *testing.T) {
	e := New()
	if state := e.Init(context.Background(), testsupport.IntakeConfig(t), "nope"); state != StateNotFound {
		t.Fatalf("state = %s, want not_found", state)
	}
	if e.View().Requested != "nope" || e.Index() != -1 || e.Progress() != 0 {
		t.Fatalf("unexpected view for not-found: %+v", e.View())
	}
	if _, err := e.Advance(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("advance while not found: %v", err)
	}
	if e.Back() {
		t.Fatalf("back while not found should be a no-op")
	}

	state, err := e.Restart()
	if err != nil || state != StateReady || currentCode(t, e) != "about" {
		t.Fatalf("Restart = %s, %v", state, err)
	}

	if _, err := e.GoTo("missing"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("GoTo unknown: %v", err)
	}
	if e.State() != StateNotFound {
		t.Fatalf("routing to an unknown page must enter not found")
	}
	if state, err := e.GoTo("health"); err != nil || state != StateReady {
		t.Fatalf("GoTo health = %s, %v", state, err)
	}
}

type failingLoader struct{ err error }

func (l failingLoader) Load(context.Context, schema.Source) (*schema.Config, error) {
	return nil, l.err
}

func TestLoad_FailureIsTerminal(t *testing.T) {
	boom := errors.New("fetch failed")
	e := New()
	if state := e.Load(context.Background(), failingLoader{err: boom}, schema.SourceFromFile("x.json"), ""); state != StateNotFound {
		t.Fatalf("state = %s", state)
	}
	if !errors.Is(e.Err(), boom) {
		t.Fatalf("Err() = %v", e.Err())
	}
	if _, err := e.Restart(); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("Restart without config: %v", err)
	}
	if _, err := e.GoTo("about"); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("GoTo without config: %v", err)
	}
}

func TestMutationsRequireReady(t *testing.T) {
	e := New()
	if err := e.Set(context.Background(), "x", answers.Text("1")); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Set while loading: %v", err)
	}
	if _, err := e.Toggle(context.Background(), "x", "a", true); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Toggle while loading: %v", err)
	}
	if _, err := e.Choose(context.Background(), "x", "a"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Choose while loading: %v", err)
	}
}

func TestAdvance_BlocksAndSurfacesErrors(t *testing.T) {
	e := newReady(t, "about")
	ctx := context.Background()

	outcome, err := e.Advance(ctx)
	if err != nil || outcome != OutcomeBlocked {
		t.Fatalf("Advance = %s, %v", outcome, err)
	}
	want := map[string]string{
		"first_name": "Please tell us your name",
		"email":      "This field is required",
	}
	if diff := cmp.Diff(want, e.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	// editing a field clears only its own error
	mustSet(t, e, "first_name", answers.Text("Ada"))
	if diff := cmp.Diff(map[string]string{"email": "This field is required"}, e.Errors()); diff != "" {
		t.Fatalf("errors after edit (-want +got):\n%s", diff)
	}

	mustSet(t, e, "email", answers.Text("not-an-email"))
	mustSet(t, e, "age", answers.Text("12"))
	mustSet(t, e, "dob", answers.Text("2015-01-01"))
	if outcome, _ := e.Advance(ctx); outcome != OutcomeBlocked {
		t.Fatalf("expected block, got %s", outcome)
	}
	want = map[string]string{
		"email": "Please enter a valid email",
		"age":   "You must be an adult",
		"dob":   "Date must be before 2010-12-31",
	}
	if diff := cmp.Diff(want, e.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	mustSet(t, e, "email", answers.Text("ada@example.com"))
	mustSet(t, e, "age", answers.Text("36"))
	mustSet(t, e, "dob", answers.Text("1988-03-14"))
	if outcome, err := e.Advance(ctx); outcome != OutcomeAdvanced || err != nil {
		t.Fatalf("Advance = %s, %v", outcome, err)
	}
	if currentCode(t, e) != "health" || len(e.Errors()) != 0 {
		t.Fatalf("expected clean health page, got %s errors=%v", currentCode(t, e), e.Errors())
	}
}

func TestAdvance_NumericBounds(t *testing.T) {
	cfg := testsupport.Config(
		schema.Page{Code: "one", Order: 1, Questions: []schema.Question{
			{Code: "n", Type: schema.KindNumber, Min: schema.NumberBound(10), Max: schema.NumberBound(20)},
		}},
		schema.Page{Code: "two", Order: 2},
	)
	e := New()
	e.Init(context.Background(), cfg, "")

	cases := []struct {
		input string
		err   string
	}{
		{"5", "Minimum value is 10"},
		{"25", "Maximum value is 20"},
	}
	for _, tc := range cases {
		mustSet(t, e, "n", answers.Text(tc.input))
		if outcome, _ := e.Advance(context.Background()); outcome != OutcomeBlocked {
			t.Fatalf("%s: expected block", tc.input)
		}
		if got := e.Errors()["n"]; got != tc.err {
			t.Fatalf("%s: error = %q, want %q", tc.input, got, tc.err)
		}
	}

	mustSet(t, e, "n", answers.Text("15"))
	if outcome, _ := e.Advance(context.Background()); outcome != OutcomeAdvanced {
		t.Fatalf("15 should advance, got %s", outcome)
	}
}

func TestFollowups_GateValidationOnlyWhenRevealed(t *testing.T) {
	e := newReady(t, "health")
	ctx := context.Background()
	mustSet(t, e, "conditions", answers.Strings("Asthma"))

	mustSet(t, e, "allergies", answers.Text("No"))
	if _, err := e.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(e.Errors()) != 0 {
		t.Fatalf("hidden required follow-up must not be validated: %v", e.Errors())
	}

	mustSet(t, e, "allergies", answers.Text("Yes"))
	if outcome, _ := e.Advance(ctx); outcome != OutcomeBlocked {
		t.Fatalf("revealed follow-up should block, got %s", outcome)
	}
	if _, ok := e.Errors()["allergy_details"]; !ok {
		t.Fatalf("expected allergy_details error, got %v", e.Errors())
	}

	mustSet(t, e, "allergy_details", answers.Text("penicillin"))
	mustSet(t, e, "allergy_severe", answers.Text("Yes"))
	if outcome, _ := e.Advance(ctx); outcome != OutcomeBlocked || e.Errors()["epipen"] == "" {
		t.Fatalf("nested follow-up should block: %s %v", outcome, e.Errors())
	}

	// a hidden ancestor hides every descendant regardless of their triggers
	mustSet(t, e, "allergies", answers.Text("No"))
	if outcome, _ := e.Advance(ctx); outcome != OutcomeAdvanced {
		t.Fatalf("expected advance once branch is hidden, got %s %v", outcome, e.Errors())
	}
}

func TestVisible_Tree(t *testing.T) {
	e := newReady(t, "health")
	mustSet(t, e, "allergies", answers.Text("Yes"))
	mustSet(t, e, "allergy_severe", answers.Text("Yes"))

	var got []string
	for _, n := range Flatten(e.Visible()) {
		got = append(got, n.Question.Code)
	}
	want := []string{"allergies", "allergy_details", "allergy_severe", "epipen", "conditions"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	nodes := e.Visible()
	if !nodes[0].Revealed() || nodes[0].Children[1].Children[0].Depth != 2 {
		t.Fatalf("unexpected tree shape: %+v", nodes[0])
	}

	mustSet(t, e, "allergies", answers.Text("No"))
	if n := len(Flatten(e.Visible())); n != 2 {
		t.Fatalf("expected only top-level questions, got %d", n)
	}
}

func TestFollowups_CheckboxTriggerUsesMembership(t *testing.T) {
	cfg := testsupport.Config(schema.Page{Code: "p", Order: 1, Questions: []schema.Question{{
		Code: "symptoms", Type: schema.KindCheckbox, Options: []schema.Option{{Label: "Pain", Value: "pain"}, {Label: "Fever", Value: "fever"}},
		ShowFollowupWhen: "pain",
		Followups:        []schema.Question{{Code: "pain_scale", Type: schema.KindNumber, Required: true}},
	}}})
	e := New()
	e.Init(context.Background(), cfg, "")

	if _, err := e.Toggle(context.Background(), "symptoms", "fever", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(Flatten(e.Visible())) != 1 {
		t.Fatalf("follow-up should stay hidden")
	}
	if _, err := e.Toggle(context.Background(), "symptoms", "pain", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(Flatten(e.Visible())) != 2 {
		t.Fatalf("follow-up should be revealed by list membership")
	}
}

func TestToggle_ExclusiveOption(t *testing.T) {
	e := newReady(t, "health")
	ctx := context.Background()

	for _, v := range []string{"Asthma", "Diabetes"} {
		if _, err := e.Toggle(ctx, "conditions", v, true); err != nil {
			t.Fatalf("toggle %s: %v", v, err)
		}
	}
	got, err := e.Toggle(ctx, "conditions", "None of the above", true)
	if err != nil {
		t.Fatalf("toggle none: %v", err)
	}
	if diff := cmp.Diff([]string{"None of the above"}, got.Strings()); diff != "" {
		t.Fatalf("exclusive selection (-want +got):\n%s", diff)
	}

	got, err = e.Toggle(ctx, "conditions", "Asthma", true)
	if err != nil {
		t.Fatalf("toggle asthma: %v", err)
	}
	if diff := cmp.Diff([]string{"Asthma"}, got.Strings()); diff != "" {
		t.Fatalf("selection after exclusive (-want +got):\n%s", diff)
	}

	got, _ = e.Toggle(ctx, "conditions", "Asthma", false)
	if !got.Empty() {
		t.Fatalf("unchecking should remove the option, got %v", got.Strings())
	}
	if n := len(e.Value("conditions").Strings()); n != 0 {
		t.Fatalf("answer set not updated, %d selections left", n)
	}
}

func TestToggle_Errors(t *testing.T) {
	e := newReady(t, "health")
	ctx := context.Background()
	if _, err := e.Toggle(ctx, "allergies", "Yes", true); !errors.Is(err, ErrNotMultiChoice) {
		t.Fatalf("radio toggle: %v", err)
	}
	if _, err := e.Toggle(ctx, "conditions", "Gout", true); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("unknown option: %v", err)
	}
	if _, err := e.Toggle(ctx, "nope", "x", true); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("unknown question: %v", err)
	}
}

func TestSet_ShapeMismatch(t *testing.T) {
	e := newReady(t, "health")
	if err := e.Set(context.Background(), "conditions", answers.Text("Asthma")); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
	if err := e.Set(context.Background(), "checkout_option_key", answers.Text("6month")); err != nil {
		t.Fatalf("undeclared codes are stored as-is: %v", err)
	}
}

func TestChoose_AutoAdvance(t *testing.T) {
	e := newReady(t, "lifestyle")
	outcome, err := e.Choose(context.Background(), "smokes", "No")
	if err != nil || outcome != OutcomeAdvanced {
		t.Fatalf("Choose = %s, %v", outcome, err)
	}
	if currentCode(t, e) != "documents" {
		t.Fatalf("expected documents page, got %s", currentCode(t, e))
	}
}

func TestChoose_TriggerValueHoldsPage(t *testing.T) {
	e := newReady(t, "health")
	outcome, err := e.Choose(context.Background(), "allergies", "Yes")
	if err != nil || outcome != OutcomeNone {
		t.Fatalf("Choose = %s, %v", outcome, err)
	}
	if currentCode(t, e) != "health" {
		t.Fatalf("page changed to %s", currentCode(t, e))
	}

	// a non-trigger value attempts the advance, which still validates
	outcome, _ = e.Choose(context.Background(), "allergies", "No")
	if outcome != OutcomeBlocked || e.Errors()["conditions"] == "" {
		t.Fatalf("expected validation block, got %s %v", outcome, e.Errors())
	}
}

func TestMutations_CodeSharedAcrossPages(t *testing.T) {
	yes := schema.Option{Label: "Yes", Value: "Yes"}
	no := schema.Option{Label: "No", Value: "No"}
	cfg := &schema.Config{Pages: []schema.Page{
		{Code: "p1", Order: 1, Questions: []schema.Question{
			{Code: "consent", Type: schema.KindCheckbox, Options: []schema.Option{yes}},
		}},
		{Code: "p2", Order: 2, Questions: []schema.Question{
			{Code: "consent", Type: schema.KindRadio, Options: []schema.Option{yes, no}},
		}},
		{Code: "p3", Order: 3},
	}}

	e := New()
	if state := e.Init(context.Background(), cfg, "p2"); state != StateReady {
		t.Fatalf("Init = %s", state)
	}
	outcome, err := e.Choose(context.Background(), "consent", "No")
	if err != nil || outcome != OutcomeAdvanced {
		t.Fatalf("Choose = %s, %v", outcome, err)
	}
	if currentCode(t, e) != "p3" {
		t.Fatalf("expected p3, got %s", currentCode(t, e))
	}

	if state, _ := e.GoTo("p1"); state != StateReady {
		t.Fatalf("GoTo p1 = %s", state)
	}
	got, err := e.Toggle(context.Background(), "consent", "Yes", true)
	if err != nil {
		t.Fatalf("Toggle on p1: %v", err)
	}
	if diff := cmp.Diff([]string{"Yes"}, got.Strings()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestChoose_AutoAdvanceDisabled(t *testing.T) {
	e := newReady(t, "lifestyle", WithAutoAdvance(false))
	outcome, err := e.Choose(context.Background(), "smokes", "No")
	if err != nil || outcome != OutcomeNone || currentCode(t, e) != "lifestyle" {
		t.Fatalf("Choose = %s, %v on %s", outcome, err, currentCode(t, e))
	}
	if _, err := e.Choose(context.Background(), "smokes", "Maybe"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("unknown option: %v", err)
	}
}

func TestChoose_DropdownDoesNotAutoAdvance(t *testing.T) {
	e := newReady(t, "checkout")
	if state, _ := e.GoTo("review"); state != StateReady {
		t.Fatalf("GoTo review = %s", state)
	}
	outcome, err := e.Choose(context.Background(), "pharmacy", "Uptown")
	if err != nil || outcome != OutcomeNone {
		t.Fatalf("Choose = %s, %v", outcome, err)
	}
}

func TestNavigation_Boundaries(t *testing.T) {
	var submitted answers.Answers
	e := newReady(t, "about", WithSubmitHook(func(_ context.Context, a answers.Answers) error {
		submitted = a
		return nil
	}))

	if e.Back() || e.Index() != 0 {
		t.Fatalf("back on the first page must be a no-op")
	}

	if _, err := e.GoTo("review"); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	mustSet(t, e, "pharmacy", answers.Text("Downtown"))
	outcome, err := e.Advance(context.Background())
	if err != nil || outcome != OutcomeSubmitted {
		t.Fatalf("Advance on last page = %s, %v", outcome, err)
	}
	if e.Index() != 5 || !e.Submitted() {
		t.Fatalf("index = %d submitted = %v", e.Index(), e.Submitted())
	}
	if submitted.Get("pharmacy").Text() != "Downtown" {
		t.Fatalf("submit hook did not receive answers: %v", submitted)
	}

	if !e.Back() || e.Index() != 4 {
		t.Fatalf("back should move to the previous page")
	}
	if got := e.Progress(); got != 5.0/6.0 {
		t.Fatalf("progress after back = %v", got)
	}
}

func TestNavigation_SubmitFailureStays(t *testing.T) {
	boom := errors.New("endpoint down")
	e := newReady(t, "review", WithSubmitHook(func(context.Context, answers.Answers) error { return boom }))
	outcome, err := e.Advance(context.Background())
	if outcome != OutcomeBlocked || !errors.Is(err, boom) {
		t.Fatalf("Advance = %s, %v", outcome, err)
	}
	if e.Submitted() || currentCode(t, e) != "review" {
		t.Fatalf("failed submission must not complete")
	}
}

func TestBack_NoValidation(t *testing.T) {
	e := newReady(t, "health")
	if !e.Back() || currentCode(t, e) != "about" {
		t.Fatalf("back should not validate the page being left")
	}
}

func TestPaymentGate(t *testing.T) {
	ctx := context.Background()

	open := newReady(t, "checkout")
	if outcome, err := open.Advance(ctx); outcome != OutcomeAdvanced || err != nil {
		t.Fatalf("default gate is off: %s, %v", outcome, err)
	}

	gated := newReady(t, "checkout", WithRequirePayment(true))
	if !gated.View().PaymentGate {
		t.Fatalf("view should expose the gate")
	}
	outcome, err := gated.Advance(ctx)
	if outcome != OutcomeBlocked || !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("Advance = %s, %v", outcome, err)
	}
	gated.PaymentFailed(errors.New("card declined"))
	if len(gated.Errors()) != 0 {
		t.Fatalf("payment failures never enter the error set")
	}
	if _, err := gated.Advance(ctx); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("failure must keep the gate closed: %v", err)
	}

	gated.PaymentSucceeded("pi_demo_1")
	if outcome, err := gated.Advance(ctx); outcome != OutcomeAdvanced || err != nil {
		t.Fatalf("Advance after payment = %s, %v", outcome, err)
	}
	if p := gated.Payment(); !gated.Paid() || p.Token != "pi_demo_1" {
		t.Fatalf("payment status = %+v", p)
	}
}

func TestPersistence_RoundTripAcrossSessions(t *testing.T) {
	store := answers.NewMemoryStore()
	first := newReady(t, "about", WithStore(store))
	mustSet(t, first, "first_name", answers.Text("Ada"))
	mustSet(t, first, "conditions", answers.Strings("Asthma"))

	second := newReady(t, "health", WithStore(store))
	if diff := cmp.Diff(first.Answers().Payload(), second.Answers().Payload()); diff != "" {
		t.Fatalf("restored answers mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistence_CorruptSnapshotStartsEmpty(t *testing.T) {
	store := answers.NewMemoryStore()
	store.SetRaw([]byte("{{{"))
	e := newReady(t, "about", WithStore(store))
	if len(e.Answers()) != 0 {
		t.Fatalf("expected empty answers, got %v", e.Answers())
	}
	mustSet(t, e, "first_name", answers.Text("Ada"))
	if len(store.Raw()) == 0 {
		t.Fatalf("mutation should overwrite the corrupt snapshot")
	}
}

type brokenStore struct{ saves int }

func (s *brokenStore) Load(context.Context) (answers.Answers, error) {
	return nil, errors.New("unavailable")
}
func (s *brokenStore) Save(context.Context, answers.Answers) error {
	s.saves++
	return errors.New("unavailable")
}
func (s *brokenStore) Clear(context.Context) error { return nil }

func TestPersistence_FailuresAreSilent(t *testing.T) {
	store := &brokenStore{}
	e := newReady(t, "about", WithStore(store))
	mustSet(t, e, "first_name", answers.Text("Ada"))
	if store.saves != 1 {
		t.Fatalf("saves = %d, want one save per mutation", store.saves)
	}
	if e.Value("first_name").Text() != "Ada" {
		t.Fatalf("answer should stay in memory")
	}
}

func TestStaleAnswersRetained(t *testing.T) {
	e := newReady(t, "health")
	mustSet(t, e, "allergies", answers.Text("Yes"))
	mustSet(t, e, "allergy_details", answers.Text("pollen"))
	mustSet(t, e, "allergies", answers.Text("No"))
	e.Back()

	if got := e.Value("allergy_details").Text(); got != "pollen" {
		t.Fatalf("hidden answers must be kept, got %q", got)
	}
}

func TestUnsupportedKindIsInert(t *testing.T) {
	e := newReady(t, "review")
	nodes := e.Visible()
	if nodes[1].Question.Code != "signature" || nodes[1].Handler.Supported() {
		t.Fatalf("expected unsupported signature node, got %+v", nodes[1])
	}
	if outcome, err := e.Advance(context.Background()); outcome != OutcomeSubmitted || err != nil {
		t.Fatalf("unsupported kinds must not block: %s, %v", outcome, err)
	}
}

func TestView_Snapshot(t *testing.T) {
	e := newReady(t, "health")
	v := e.View()
	if v.State != StateReady || v.Page.Code != "health" || v.Index != 1 || v.Total != 6 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if !v.CanBack || v.IsLast || v.Progress != 2.0/6.0 {
		t.Fatalf("unexpected navigation flags: %+v", v)
	}
	v.Errors["x"] = "mutated"
	if _, ok := e.Errors()["x"]; ok {
		t.Fatalf("view must not alias engine state")
	}
}

func TestReset(t *testing.T) {
	store := answers.NewMemoryStore()
	e := newReady(t, "about", WithStore(store))
	mustSet(t, e, "first_name", answers.Text("Ada"))
	if err := e.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(e.Answers()) != 0 || len(store.Raw()) != 0 {
		t.Fatalf("reset should clear memory and storage")
	}
}
