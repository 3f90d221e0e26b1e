package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/entries"
	"github.com/2beens/gymlog/internal/gymlog/form"
	"github.com/2beens/gymlog/internal/gymlog/modal"
	"github.com/2beens/gymlog/internal/gymlog/router"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoActiveForm = errors.New("no active form")

type FormKind string

const (
	FormLog          FormKind = "log"
	FormEditWorkout  FormKind = "edit_workout"
	FormEditExercise FormKind = "edit_exercise"

	EditWorkoutFormID  = "editWorkoutForm"
	EditExerciseFormID = "editExerciseForm"

	FieldDate = "date"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=remote_test

type formBackend interface {
	LogForm(ctx context.Context) (string, error)
	SubmitLog(ctx context.Context, values []form.Value) error
	EditWorkoutForm(ctx context.Context, id string) (string, error)
	SubmitEditWorkout(ctx context.Context, id string, values []form.Value) error
	EditExerciseForm(ctx context.Context, id string) (string, error)
	SubmitEditExercise(ctx context.Context, id string, values []form.Value) error
}

// Submission describes a mutation the backend accepted.
type Submission struct {
	Kind FormKind
	ID   string
	// Dates are the days whose records the mutation may have changed.
	Dates []string
}

// SubmitHook runs after a successful submission, to resynchronize views.
type SubmitHook func(ctx context.Context, s Submission) error

// ActiveForm is the server fragment form currently shown in the modal.
type ActiveForm struct {
	Kind    FormKind
	ID      string
	Form    *form.Form
	Entries *entries.List

	contentSeq uint64
}

// ActiveFormState is the serializable view of the active form.
type ActiveFormState struct {
	Kind    FormKind           `json:"kind"`
	ID      string             `json:"id,omitempty"`
	Fields  map[string]string  `json:"fields"`
	Entries []entries.RowState `json:"entries,omitempty"`
}

// Loader fetches server fragments into the shared modal and intercepts the
// submission of the forms they contain.
type Loader struct {
	mu     sync.Mutex
	active *ActiveForm

	backend formBackend
	modal   *modal.Modal
	router  *router.Router
	metrics *metrics.Manager
	now     func() time.Time
	onDone  SubmitHook
}

type LoaderOption func(l *Loader)

func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

func WithSubmitHook(hook SubmitHook) LoaderOption {
	return func(l *Loader) {
		l.onDone = hook
	}
}

func NewLoader(
	backend formBackend,
	m *modal.Modal,
	r *router.Router,
	metricsManager *metrics.Manager,
	opts ...LoaderOption,
) *Loader {
	l := &Loader{
		backend: backend,
		modal:   m,
		router:  r,
		metrics: metricsManager,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	m.OnRelease(l.deactivate)

	r.Handle(router.Submit, router.RoleFormSubmit, string(FormLog), l.handleSubmit)
	r.Handle(router.Submit, router.RoleFormSubmit, string(FormEditWorkout), l.handleSubmit)
	r.Handle(router.Submit, router.RoleFormSubmit, string(FormEditExercise), l.handleSubmit)
	r.Handle(router.Click, router.RoleAddEntry, string(FormLog), l.handleAddEntry)
	r.Handle(router.Change, router.RoleFormField, string(FormLog), l.handleFieldChange)
	r.Handle(router.Change, router.RoleFormField, string(FormEditWorkout), l.handleFieldChange)
	r.Handle(router.Change, router.RoleFormField, string(FormEditExercise), l.handleFieldChange)

	return l
}

// OpenLogForm loads the log form into the modal, fills in today's date when
// the date field is empty and wires the entry rows.
func (l *Loader) OpenLogForm(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "loader.openLogForm")
	defer func() { tracing.End(span, err) }()

	t := l.modal.Begin(ctx)
	fragment, err := l.backend.LogForm(t.Context())
	if err != nil {
		l.modal.Abandon(t)
		return fmt.Errorf("load log form: %w", err)
	}

	f, err := form.Parse(fragment, "")
	if err != nil {
		l.modal.Abandon(t)
		return fmt.Errorf("bind log form: %w", err)
	}
	if date := f.Field(FieldDate); date != nil && date.Current() == "" {
		date.Value = l.now().UTC().Format(gymlog.DateLayout)
	}

	list, err := entries.Bind(f, l.router, fmt.Sprintf("modal-log-%d", t.Seq()),
		entries.WithGuard(l.locked),
	)
	if err != nil {
		l.modal.Abandon(t)
		return fmt.Errorf("bind log form entries: %w", err)
	}

	return l.show(t, &ActiveForm{
		Kind:    FormLog,
		Form:    f,
		Entries: list,
	})
}

func (l *Loader) OpenEditWorkout(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "loader.openEditWorkout")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("workout.id", id))

	return l.openEdit(ctx, FormEditWorkout, id, EditWorkoutFormID, l.backend.EditWorkoutForm)
}

func (l *Loader) OpenEditExercise(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "loader.openEditExercise")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("exercise.id", id))

	return l.openEdit(ctx, FormEditExercise, id, EditExerciseFormID, l.backend.EditExerciseForm)
}

func (l *Loader) openEdit(
	ctx context.Context,
	kind FormKind,
	id, formID string,
	fetch func(ctx context.Context, id string) (string, error),
) error {
	t := l.modal.Begin(ctx)
	fragment, err := fetch(t.Context(), id)
	if err != nil {
		l.modal.Abandon(t)
		return fmt.Errorf("load %s form %s: %w", kind, id, err)
	}

	f, err := form.Parse(fragment, formID)
	if errors.Is(err, form.ErrFormNotFound) {
		f, err = form.Parse(fragment, "")
	}
	if err != nil {
		l.modal.Abandon(t)
		return fmt.Errorf("bind %s form %s: %w", kind, id, err)
	}

	return l.show(t, &ActiveForm{
		Kind: kind,
		ID:   id,
		Form: f,
	})
}

// show delivers the form to the modal and makes it the active form, unless a
// newer load or a close got there first.
func (l *Loader) show(t modal.Ticket, a *ActiveForm) error {
	a.contentSeq = t.Seq()
	if err := l.modal.Deliver(t, a.Form.Render()); err != nil {
		a.detach()
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.modal.ShowingContent(a.contentSeq) {
		a.detach()
		return modal.ErrStaleContent
	}
	l.active = a
	log.Debugf("loader: %s form %s active", a.Kind, a.ID)
	return nil
}

func (l *Loader) locked(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

func (l *Loader) deactivate(contentSeq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil || l.active.contentSeq != contentSeq {
		return
	}
	l.active.detach()
	l.active = nil
}

func (a *ActiveForm) detach() {
	if a.Entries != nil {
		a.Entries.Detach()
	}
}

// Active returns the active form, nil when the modal shows no form.
func (l *Loader) Active() *ActiveForm {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *Loader) ActiveState() *ActiveFormState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return nil
	}

	st := &ActiveFormState{
		Kind:   l.active.Kind,
		ID:     l.active.ID,
		Fields: make(map[string]string),
	}
	if l.active.Entries != nil {
		st.Entries = l.active.Entries.Snapshot()
	}
	for _, c := range l.active.Form.Controls() {
		if c.Name == "" || inEntries(l.active, c) {
			continue
		}
		st.Fields[c.Name] = c.Current()
	}
	return st
}

func inEntries(a *ActiveForm, c *form.Control) bool {
	if a.Entries == nil {
		return false
	}
	for _, row := range a.Entries.Rows() {
		for _, rc := range a.Form.ControlsIn(row.Node()) {
			if rc == c {
				return true
			}
		}
	}
	return false
}

// RelaxWeightSteps drops the step of the weight inputs in the active form,
// whatever its kind, and reports how many were relaxed.
func (l *Loader) RelaxWeightSteps() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return 0
	}
	return form.RelaxWeightSteps(l.active.Form.Document())
}

// Reconcile writes the live form state back into the modal content.
func (l *Loader) Reconcile() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return
	}
	l.modal.Refresh(l.active.contentSeq, l.active.Form.Render())
}

// Submit posts the active form. The log form gets its weight steps relaxed
// first. On success the submit hook resynchronizes the views; on failure the
// modal stays as it was.
func (l *Loader) Submit(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "loader.submit")
	defer func() { tracing.End(span, err) }()

	l.mu.Lock()
	a := l.active
	if a == nil {
		l.mu.Unlock()
		return ErrNoActiveForm
	}
	if a.Kind == FormLog {
		relaxed := form.RelaxWeightSteps(a.Form.Document())
		log.Tracef("loader: relaxed %d weight inputs", relaxed)
	}
	values := a.Form.Values()
	submission := Submission{
		Kind:  a.Kind,
		ID:    a.ID,
		Dates: AffectedDates(a.Form),
	}
	l.mu.Unlock()

	span.SetAttributes(
		attribute.String("form.kind", string(a.Kind)),
		attribute.Int("form.values", len(values)),
	)

	switch a.Kind {
	case FormLog:
		err = l.backend.SubmitLog(ctx, values)
	case FormEditWorkout:
		err = l.backend.SubmitEditWorkout(ctx, a.ID, values)
	case FormEditExercise:
		err = l.backend.SubmitEditExercise(ctx, a.ID, values)
	}
	if err != nil {
		l.metrics.CounterSubmissions.WithLabelValues(string(a.Kind), "error").Inc()
		return fmt.Errorf("submit %s form: %w", a.Kind, err)
	}
	l.metrics.CounterSubmissions.WithLabelValues(string(a.Kind), "ok").Inc()

	log.Debugf("loader: %s form %s submitted", a.Kind, a.ID)
	if l.onDone == nil {
		return nil
	}
	return l.onDone(ctx, submission)
}

func (l *Loader) handleSubmit(ctx context.Context, ev router.Event) error {
	if a := l.Active(); a == nil || string(a.Kind) != ev.Target.ID {
		return fmt.Errorf("%w: %s", ErrNoActiveForm, ev.Target.ID)
	}
	return l.Submit(ctx)
}

// AddEntry appends an entry row to the active log form.
func (l *Loader) AddEntry() (*entries.Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil || l.active.Entries == nil {
		return nil, ErrNoActiveForm
	}
	return l.active.Entries.AddEntry(), nil
}

func (l *Loader) handleAddEntry(_ context.Context, _ router.Event) error {
	_, err := l.AddEntry()
	return err
}

// SetField updates a control of the active form. An "entry" data value scopes
// the change to one entry row.
func (l *Loader) SetField(rowID, name, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return ErrNoActiveForm
	}
	if rowID != "" && l.active.Entries != nil {
		return l.active.Entries.Set(rowID, name, value)
	}
	return l.active.Form.Set(name, value)
}

func (l *Loader) handleFieldChange(_ context.Context, ev router.Event) error {
	if a := l.Active(); a == nil || string(a.Kind) != ev.Target.ID {
		return fmt.Errorf("%w: %s", ErrNoActiveForm, ev.Target.ID)
	}
	return l.SetField(ev.Target.Get("entry"), ev.Target.Get("name"), ev.Value)
}

// AffectedDates returns the markup and live values of the date field, so an
// edit that moves a workout refreshes both days.
func AffectedDates(f *form.Form) []string {
	c := f.Field(FieldDate)
	if c == nil {
		return nil
	}

	var dates []string
	for _, d := range []string{c.Default(), c.Current()} {
		d = strings.TrimSpace(d)
		if d == "" || (len(dates) > 0 && dates[0] == d) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}
