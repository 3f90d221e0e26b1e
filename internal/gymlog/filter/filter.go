package filter

import (
	"strings"

	"github.com/2beens/gymlog/internal/gymlog"
)

// State holds the two filter dimensions. An empty dimension matches every row.
type State struct {
	Muscle   string `json:"muscleFilter"`
	Exercise string `json:"exerciseFilter"`
}

func (s State) Empty() bool {
	return s.Muscle == "" && s.Exercise == ""
}

// Matches reports whether row passes both dimensions.
func Matches(s State, row gymlog.WorkoutRow) bool {
	return (s.Muscle == "" || row.MuscleGroup == s.Muscle) &&
		(s.Exercise == "" || row.Exercise == s.Exercise)
}

// Apply returns the visibility mask of rows under s.
func Apply(s State, rows []gymlog.WorkoutRow) []bool {
	visible := make([]bool, len(rows))
	for i, row := range rows {
		visible[i] = Matches(s, row)
	}
	return visible
}

// Engine keeps the filter state and the visibility of the table rows in sync.
// Every mutation recomputes visibility before returning.
type Engine struct {
	state   State
	rows    []gymlog.WorkoutRow
	visible []bool
}

func NewEngine(rows []gymlog.WorkoutRow) *Engine {
	e := &Engine{}
	e.SetRows(rows)
	return e
}

func (e *Engine) State() State {
	return e.state
}

// SetRows replaces the table rows and keeps the current filters.
func (e *Engine) SetRows(rows []gymlog.WorkoutRow) {
	e.rows = append([]gymlog.WorkoutRow(nil), rows...)
	e.Update()
}

func (e *Engine) SetMuscle(muscle string) {
	e.state.Muscle = muscle
	e.Update()
}

func (e *Engine) SetExercise(exercise string) {
	e.state.Exercise = exercise
	e.Update()
}

// Shortcut applies a clicked exercise label as the exercise filter.
func (e *Engine) Shortcut(label string) {
	e.SetExercise(strings.TrimSpace(label))
}

func (e *Engine) Reset() {
	e.state = State{}
	e.Update()
}

func (e *Engine) Update() {
	e.visible = Apply(e.state, e.rows)
}

func (e *Engine) Rows() []gymlog.WorkoutRow {
	return append([]gymlog.WorkoutRow(nil), e.rows...)
}

func (e *Engine) Mask() []bool {
	return append([]bool(nil), e.visible...)
}

// Visible returns the shown rows, in table order.
func (e *Engine) Visible() []gymlog.WorkoutRow {
	var shown []gymlog.WorkoutRow
	for i, row := range e.rows {
		if e.visible[i] {
			shown = append(shown, row)
		}
	}
	return shown
}
