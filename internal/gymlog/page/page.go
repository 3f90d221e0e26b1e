// Package page composes the interaction layer of the workout log pages: the
// history table filters, the entry rows of the log form, the shared modal and
// the calendar popup. All client state lives on Page and can be taken as a
// serializable snapshot.
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/calendar"
	"github.com/2beens/gymlog/internal/gymlog/entries"
	"github.com/2beens/gymlog/internal/gymlog/filter"
	"github.com/2beens/gymlog/internal/gymlog/form"
	"github.com/2beens/gymlog/internal/gymlog/modal"
	"github.com/2beens/gymlog/internal/gymlog/remote"
	"github.com/2beens/gymlog/internal/gymlog/router"
	"github.com/2beens/gymlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// PageLogFormID routes events of the log form embedded in the page itself, as
// opposed to the one loaded into the modal.
const PageLogFormID = "page-log"

const defaultMaxErrors = 20

var ErrNoLogForm = errors.New("page has no log form")

type SyncStrategy string

const (
	// SyncInvalidate refetches only the views a mutation touched.
	SyncInvalidate SyncStrategy = "invalidate"
	// SyncReload drops all client state and mounts the page again.
	SyncReload SyncStrategy = "reload"
)

func ParseSyncStrategy(s string) (SyncStrategy, error) {
	switch SyncStrategy(s) {
	case "", SyncInvalidate:
		return SyncInvalidate, nil
	case SyncReload:
		return SyncReload, nil
	default:
		return "", fmt.Errorf("unknown sync strategy: %s", s)
	}
}

// Backend is the workout backend as seen by the page.
type Backend interface {
	DayData(ctx context.Context, date string) ([]gymlog.DayRecord, error)
	IndexPage(ctx context.Context) (string, error)
	LogForm(ctx context.Context) (string, error)
	SubmitLog(ctx context.Context, values []form.Value) error
	EditWorkoutForm(ctx context.Context, id string) (string, error)
	SubmitEditWorkout(ctx context.Context, id string, values []form.Value) error
	EditExerciseForm(ctx context.Context, id string) (string, error)
	SubmitEditExercise(ctx context.Context, id string, values []form.Value) error
}

type Params struct {
	Backend   Backend
	Metrics   *metrics.Manager
	Strategy  SyncStrategy
	Clock     func() time.Time
	MaxErrors int
}

type Page struct {
	mu sync.Mutex

	backend  Backend
	metrics  *metrics.Manager
	strategy SyncStrategy
	now      func() time.Time

	router  *router.Router
	modal   *modal.Modal
	loader  *remote.Loader
	popup   *calendar.Popup
	filters *filter.Engine

	// page-level log form, kept in its own document so it can be reset
	logFormHTML string
	logForm     *form.Form
	logEntries  *entries.List
	logFormSeq  int

	exerciseFormVisible bool
	shortcuts           []string
	marks               map[string][]string

	errors    []UIError
	maxErrors int
	mounts    int
}

func New(params Params) *Page {
	p := &Page{
		backend:   params.Backend,
		metrics:   params.Metrics,
		strategy:  params.Strategy,
		now:       params.Clock,
		maxErrors: params.MaxErrors,
		router:    router.New(),
		filters:   filter.NewEngine(nil),
		marks:     make(map[string][]string),
	}
	if p.strategy == "" {
		p.strategy = SyncInvalidate
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.maxErrors <= 0 {
		p.maxErrors = defaultMaxErrors
	}

	p.modal = modal.New(p.metrics)
	p.loader = remote.NewLoader(p.backend, p.modal, p.router, p.metrics,
		remote.WithClock(p.now),
		remote.WithSubmitHook(p.synchronize),
	)
	p.popup = calendar.NewPopup(p.backend, p.modal)
	p.registerRoutes()

	return p
}

func (p *Page) Router() *router.Router {
	return p.router
}

func (p *Page) Modal() *modal.Modal {
	return p.modal
}

func (p *Page) Loader() *remote.Loader {
	return p.loader
}

// Dispatch routes the event to its handler, then writes the live form state
// back into the modal. Failures are reported on the error surface and
// returned; the state the failed handler would have changed stays as it was.
func (p *Page) Dispatch(ctx context.Context, ev router.Event) error {
	err := p.router.Dispatch(ctx, ev)
	p.loader.Reconcile()
	if err != nil {
		p.report(ev.String(), err)
	}
	return err
}

func (p *Page) registerRoutes() {
	r := p.router

	closeModal := func(_ context.Context, ev router.Event) error {
		p.modal.HandleClick(ev.Target)
		return nil
	}
	r.Handle(router.Click, router.RoleOverlay, "", closeModal)
	r.Handle(router.Click, router.RoleModalClose, "", closeModal)
	r.Handle(router.Click, router.RoleModalContent, "", closeModal)

	r.Handle(router.Change, router.RoleMuscleFilter, "", func(_ context.Context, ev router.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.filters.SetMuscle(ev.Value)
		return nil
	})
	r.Handle(router.Change, router.RoleExerciseFilter, "", func(_ context.Context, ev router.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.filters.SetExercise(ev.Value)
		return nil
	})
	r.Handle(router.Click, router.RoleExerciseShortcut, "", func(_ context.Context, ev router.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.filters.Shortcut(ev.Target.Text)
		return nil
	})

	r.Handle(router.Click, router.RoleToggleExerciseForm, "", func(_ context.Context, _ router.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.exerciseFormVisible = !p.exerciseFormVisible
		return nil
	})
	r.Handle(router.Click, router.RoleCancelExerciseForm, "", func(_ context.Context, _ router.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.exerciseFormVisible = false
		return nil
	})

	r.Handle(router.Click, router.RoleCalendarDay, "", func(ctx context.Context, ev router.Event) error {
		_, err := p.OpenDay(ctx, targetKey(ev.Target, "date"))
		return err
	})
	r.Handle(router.Click, router.RoleEditWorkout, "", func(ctx context.Context, ev router.Event) error {
		return p.loader.OpenEditWorkout(ctx, targetKey(ev.Target, "id"))
	})
	r.Handle(router.Click, router.RoleEditExercise, "", func(ctx context.Context, ev router.Event) error {
		return p.loader.OpenEditExercise(ctx, targetKey(ev.Target, "id"))
	})
	r.Handle(router.Click, router.RoleExerciseNote, "", func(_ context.Context, ev router.Event) error {
		_, err := p.loader.OpenNote(ev.Target.Get("memo"), ev.Target.Get("video"))
		return err
	})
	r.Handle(router.Click, router.RoleOpenLogForm, "", func(ctx context.Context, _ router.Event) error {
		return p.loader.OpenLogForm(ctx)
	})

	r.Handle(router.Submit, router.RoleFormSubmit, PageLogFormID, func(ctx context.Context, _ router.Event) error {
		return p.SubmitLogForm(ctx)
	})
	r.Handle(router.Click, router.RoleAddEntry, PageLogFormID, func(_ context.Context, _ router.Event) error {
		_, err := p.AddLogEntry()
		return err
	})
	r.Handle(router.Change, router.RoleFormField, PageLogFormID, func(_ context.Context, ev router.Event) error {
		return p.SetLogField(ev.Target.Get("entry"), ev.Target.Get("name"), ev.Value)
	})
}

// targetKey prefers the target id and falls back to its data value.
func targetKey(t router.Target, key string) string {
	if t.ID != "" {
		return t.ID
	}
	return t.Get(key)
}

// OpenDay shows the calendar popup of date and refreshes the day marks from
// the records it got.
func (p *Page) OpenDay(ctx context.Context, date string) ([]gymlog.DayRecord, error) {
	records, err := p.popup.Open(ctx, date)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.setMarksLocked(date, records)
	return records, nil
}

func (p *Page) setMarksLocked(date string, records []gymlog.DayRecord) {
	if groups := gymlog.MuscleGroups(records); len(groups) > 0 {
		p.marks[date] = groups
	} else {
		delete(p.marks, date)
	}
}

// AddLogEntry appends an entry row to the page log form.
func (p *Page) AddLogEntry() (*entries.Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logEntries == nil {
		return nil, ErrNoLogForm
	}
	return p.logEntries.AddEntry(), nil
}

func (p *Page) SetLogField(rowID, name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logForm == nil {
		return ErrNoLogForm
	}
	if rowID != "" && p.logEntries != nil {
		return p.logEntries.Set(rowID, name, value)
	}
	return p.logForm.Set(name, value)
}

// SubmitLogForm posts the page log form. Weight steps are relaxed right
// before the form data is collected, in the page form and in whatever form
// the modal shows.
func (p *Page) SubmitLogForm(ctx context.Context) error {
	if n := p.loader.RelaxWeightSteps(); n > 0 {
		log.Tracef("page: relaxed %d weight inputs in the modal form", n)
	}

	p.mu.Lock()
	if p.logForm == nil {
		p.mu.Unlock()
		return ErrNoLogForm
	}
	form.RelaxWeightSteps(p.logForm.Document())
	values := p.logForm.Values()
	dates := remote.AffectedDates(p.logForm)
	p.mu.Unlock()

	if err := p.backend.SubmitLog(ctx, values); err != nil {
		p.metrics.CounterSubmissions.WithLabelValues(PageLogFormID, "error").Inc()
		return fmt.Errorf("submit page log form: %w", err)
	}
	p.metrics.CounterSubmissions.WithLabelValues(PageLogFormID, "ok").Inc()
	log.Debugf("page: log form submitted for %v", dates)

	p.mu.Lock()
	err := p.resetLogFormLocked()
	p.mu.Unlock()
	if err != nil {
		return err
	}

	return p.synchronize(ctx, remote.Submission{
		Kind:  remote.FormLog,
		Dates: dates,
	})
}

// LogForm returns the page log form and its entry rows, nil if the page has
// none.
func (p *Page) LogForm() (*form.Form, *entries.List) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logForm, p.logEntries
}

// ShortcutLabels returns the exercise shortcut labels of the mounted page.
func (p *Page) ShortcutLabels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.shortcuts...)
}

func (p *Page) VisibleRows() []gymlog.WorkoutRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.Visible()
}

// Mounts returns how many times the page was mounted; a reload mounts again.
func (p *Page) Mounts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounts
}

// Close drops the modal and every route the page registered for rows.
func (p *Page) Close() {
	p.modal.Close()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logEntries != nil {
		p.logEntries.Detach()
	}
}
