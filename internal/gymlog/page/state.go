package page

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/entries"
	"github.com/2beens/gymlog/internal/gymlog/filter"
	"github.com/2beens/gymlog/internal/gymlog/modal"
	"github.com/2beens/gymlog/internal/gymlog/remote"

	log "github.com/sirupsen/logrus"
)

// UIError is a failure shown on the error surface.
type UIError struct {
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is the serializable snapshot of the client state.
type State struct {
	Filters             filter.State            `json:"filters"`
	Rows                []gymlog.WorkoutRow     `json:"rows"`
	Visible             []bool                  `json:"visible"`
	Shortcuts           []string                `json:"shortcuts,omitempty"`
	Modal               modal.Content           `json:"modal"`
	ActiveForm          *remote.ActiveFormState `json:"activeForm,omitempty"`
	LogEntries          []entries.RowState      `json:"logEntries,omitempty"`
	ExerciseFormVisible bool                    `json:"exerciseFormVisible"`
	Calendar            map[string][]string     `json:"calendar,omitempty"`
	Errors              []UIError               `json:"errors,omitempty"`
}

// VisibleRows is the pure view of the table under the snapshot filters.
func (s State) VisibleRows() []gymlog.WorkoutRow {
	var shown []gymlog.WorkoutRow
	for i, visible := range filter.Apply(s.Filters, s.Rows) {
		if visible {
			shown = append(shown, s.Rows[i])
		}
	}
	return shown
}

func (p *Page) State() State {
	// modal and loader have their own locks and never call back into the page
	modalContent := p.modal.Content()
	activeForm := p.loader.ActiveState()

	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		Filters:             p.filters.State(),
		Rows:                p.filters.Rows(),
		Visible:             p.filters.Mask(),
		Shortcuts:           append([]string(nil), p.shortcuts...),
		Modal:               modalContent,
		ActiveForm:          activeForm,
		ExerciseFormVisible: p.exerciseFormVisible,
		Errors:              append([]UIError(nil), p.errors...),
	}
	if p.logEntries != nil {
		st.LogEntries = p.logEntries.Snapshot()
	}
	if len(p.marks) > 0 {
		st.Calendar = make(map[string][]string, len(p.marks))
		for date, groups := range p.marks {
			st.Calendar[date] = append([]string(nil), groups...)
		}
	}
	return st
}

// Errors returns the error surface, oldest first.
func (p *Page) Errors() []UIError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]UIError(nil), p.errors...)
}

func (p *Page) DismissErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = nil
}

// CalendarDates returns the dates that have marks, sorted.
func (p *Page) CalendarDates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	dates := make([]string, 0, len(p.marks))
	for date := range p.marks {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// report puts err on the error surface. Superseded loads are not failures.
func (p *Page) report(op string, err error) {
	if errors.Is(err, modal.ErrStaleContent) || errors.Is(err, context.Canceled) {
		log.Debugf("page: %s superseded: %s", op, err)
		return
	}

	log.Errorf("page: %s: %s", op, err)
	p.metrics.CounterReportedErrors.Inc()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, UIError{
		Op:      op,
		Message: err.Error(),
		At:      p.now(),
	})
	if over := len(p.errors) - p.maxErrors; over > 0 {
		p.errors = p.errors[over:]
	}
}
