// Package entries manages the repeatable "exercise entry" rows of a log form.
package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/dom"
	"github.com/2beens/gymlog/internal/gymlog/form"
	"github.com/2beens/gymlog/internal/gymlog/router"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	ContainerID      = "entries"
	ClassEntry       = "entry"
	ClassRemoveEntry = "removeEntry"
	AttrEntryID      = "data-entry-id"

	FieldExercise = "exercise_id"
	FieldSets     = "sets"
	FieldReps     = "reps"
	FieldWeight   = "weight"

	removeLabel = "Remove"
)

var (
	ErrNoContainer   = errors.New("entries container not found")
	ErrNoTemplateRow = errors.New("no entry template row")
	ErrRowNotFound   = errors.New("entry row not found")
	ErrNotRemovable  = errors.New("entry row not removable")
)

type Row struct {
	ID        string
	Removable bool
	node      *html.Node
}

func (r *Row) Node() *html.Node {
	return r.node
}

// RowState is the serializable view of a row.
type RowState struct {
	ID        string            `json:"id"`
	Removable bool              `json:"removable"`
	Exercise  string            `json:"exercise"`
	Sets      string            `json:"sets"`
	Reps      string            `json:"reps"`
	Weight    string            `json:"weight"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Guard runs fn while holding the lock of whoever owns the list. The row
// routes registered by a list go through it, so they are serialized with
// every other access to the list and its form.
type Guard func(fn func() error) error

func unguarded(fn func() error) error {
	return fn()
}

type Option func(l *List)

// WithGuard sets the guard the row route handlers run under.
func WithGuard(g Guard) Option {
	return func(l *List) {
		if g != nil {
			l.guard = g
		}
	}
}

type List struct {
	form      *form.Form
	router    *router.Router
	guard     Guard
	container *html.Node
	pristine  *html.Node
	rows      []*Row
	idPrefix  string
	nextID    int
}

// Bind attaches a list to the entries container of f. Row ids start with
// idPrefix, which must be unique among the lists sharing r. Every initial row
// gets the exercise autofill route; only rows whose markup carries a remove
// control are removable.
func Bind(f *form.Form, r *router.Router, idPrefix string, opts ...Option) (*List, error) {
	container := dom.Find(f.Node(), dom.ByID(ContainerID))
	if container == nil {
		container = f.Document().ByID(ContainerID)
	}
	if container == nil {
		return nil, ErrNoContainer
	}

	rowNodes := dom.FindAll(container, dom.ByClass(ClassEntry))
	if len(rowNodes) == 0 {
		return nil, ErrNoTemplateRow
	}

	l := &List{
		form:      f,
		router:    r,
		container: container,
		guard:     unguarded,
		pristine:  dom.Clone(rowNodes[0]),
		idPrefix:  idPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, n := range rowNodes {
		removable := dom.Find(n, dom.ByClass(ClassRemoveEntry)) != nil
		row := l.adopt(n, removable)
		l.AttachExerciseListener(row)
	}

	return l, nil
}

func (l *List) adopt(n *html.Node, removable bool) *Row {
	l.nextID++
	row := &Row{
		ID:        fmt.Sprintf("%s-entry-%d", l.idPrefix, l.nextID),
		Removable: removable,
		node:      n,
	}
	dom.SetAttr(n, AttrEntryID, row.ID)
	l.rows = append(l.rows, row)

	if removable {
		l.router.Handle(router.Click, router.RoleRemoveEntry, row.ID, func(_ context.Context, _ router.Event) error {
			return l.guard(func() error {
				return l.Remove(row.ID)
			})
		})
	}
	return row
}

// AddEntry clones the first row, resets the clone to markup defaults, gives it
// a remove control and appends it to the container. The template row is not
// touched.
func (l *List) AddEntry() *Row {
	template := l.pristine
	if len(l.rows) > 0 {
		template = l.rows[0].node
	}

	clone := dom.Clone(template)
	for _, rm := range dom.FindAll(clone, dom.ByClass(ClassRemoveEntry)) {
		dom.Detach(rm)
	}
	clone.AppendChild(dom.NewElement("button", removeLabel,
		"type", "button",
		"class", ClassRemoveEntry,
	))

	l.container.AppendChild(clone)
	for _, c := range l.form.ControlsIn(clone) {
		c.Reset()
	}

	row := l.adopt(clone, true)
	l.AttachExerciseListener(row)

	log.Debugf("entries: added row %s, %d rows now", row.ID, len(l.rows))
	return row
}

// Remove detaches the row and drops its routes.
func (l *List) Remove(rowID string) error {
	i := l.index(rowID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
	}

	row := l.rows[i]
	if !row.Removable {
		return fmt.Errorf("%w: %s", ErrNotRemovable, rowID)
	}

	dom.Detach(row.node)
	l.form.Release(row.node)
	l.router.RemoveElement(router.RoleRemoveEntry, row.ID)
	l.router.RemoveElement(router.RoleExerciseSelect, row.ID)
	l.rows = append(l.rows[:i], l.rows[i+1:]...)

	log.Debugf("entries: removed row %s, %d rows left", row.ID, len(l.rows))
	return nil
}

// AttachExerciseListener routes exercise changes of the row to SelectExercise.
func (l *List) AttachExerciseListener(row *Row) {
	l.router.Handle(router.Change, router.RoleExerciseSelect, row.ID, func(_ context.Context, ev router.Event) error {
		return l.guard(func() error {
			return l.SelectExercise(row.ID, ev.Value)
		})
	})
}

// SelectExercise selects the option and copies its recommended defaults into
// the row. Each of sets, reps and weight is handled on its own: a missing
// default keeps whatever the field holds.
func (l *List) SelectExercise(rowID, optionValue string) error {
	sel := l.Field(rowID, FieldExercise)
	if sel == nil {
		return fmt.Errorf("%w: %s/%s", ErrRowNotFound, rowID, FieldExercise)
	}
	if err := sel.SetValue(optionValue); err != nil {
		return err
	}

	opt, ok := sel.SelectedOption()
	if !ok {
		return nil
	}
	ex := ExerciseOf(opt)
	for name, def := range map[string]string{
		FieldSets:   ex.Sets,
		FieldReps:   ex.Reps,
		FieldWeight: ex.Weight,
	} {
		if def == "" {
			continue
		}
		if c := l.Field(rowID, name); c != nil {
			c.Value = def
		}
	}
	return nil
}

// Set updates one field of a row.
func (l *List) Set(rowID, name, value string) error {
	c := l.Field(rowID, name)
	if c == nil {
		return fmt.Errorf("%w: %s/%s", ErrRowNotFound, rowID, name)
	}
	return c.SetValue(value)
}

func (l *List) Field(rowID, name string) *form.Control {
	row := l.Row(rowID)
	if row == nil {
		return nil
	}
	for _, c := range l.form.ControlsIn(row.node) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (l *List) Row(rowID string) *Row {
	if i := l.index(rowID); i >= 0 {
		return l.rows[i]
	}
	return nil
}

func (l *List) Rows() []*Row {
	return append([]*Row(nil), l.rows...)
}

func (l *List) Len() int {
	return len(l.rows)
}

// Detach drops every route the list registered.
func (l *List) Detach() {
	for _, row := range l.rows {
		l.router.RemoveElement(router.RoleRemoveEntry, row.ID)
		l.router.RemoveElement(router.RoleExerciseSelect, row.ID)
	}
}

func (l *List) Snapshot() []RowState {
	states := make([]RowState, 0, len(l.rows))
	for _, row := range l.rows {
		st := RowState{
			ID:        row.ID,
			Removable: row.Removable,
		}
		for _, c := range l.form.ControlsIn(row.node) {
			switch c.Name {
			case FieldExercise:
				st.Exercise = c.Current()
			case FieldSets:
				st.Sets = c.Current()
			case FieldReps:
				st.Reps = c.Current()
			case FieldWeight:
				st.Weight = c.Current()
			case "":
			default:
				if st.Fields == nil {
					st.Fields = make(map[string]string)
				}
				st.Fields[c.Name] = c.Current()
			}
		}
		states = append(states, st)
	}
	return states
}

func (l *List) index(rowID string) int {
	for i, row := range l.rows {
		if row.ID == rowID {
			return i
		}
	}
	return -1
}

// ExerciseOf reads the exercise option and its recommended defaults.
func ExerciseOf(o form.Option) gymlog.ExerciseOption {
	return gymlog.ExerciseOption{
		ID:     o.Value,
		Name:   o.Label,
		Sets:   strings.TrimSpace(o.Data(gymlog.AttrDefaultSets)),
		Reps:   strings.TrimSpace(o.Data(gymlog.AttrDefaultReps)),
		Weight: strings.TrimSpace(o.Data(gymlog.AttrDefaultWeight)),
	}
}
