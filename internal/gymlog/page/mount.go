package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/calendar"
	"github.com/2beens/gymlog/internal/gymlog/dom"
	"github.com/2beens/gymlog/internal/gymlog/entries"
	"github.com/2beens/gymlog/internal/gymlog/filter"
	"github.com/2beens/gymlog/internal/gymlog/form"

	log "github.com/sirupsen/logrus"
)

const (
	DateInputID      = "dateInput"
	MuscleFilterID   = "muscleFilter"
	ExerciseFilterID = "exerciseFilter"
	ExerciseFormID   = "exerciseForm"
	LogFormID        = "logForm"
	ClassCalendar    = "calendar"
	AttrMuscles      = "data-muscles"
)

// Load fetches the history page and mounts it.
func (p *Page) Load(ctx context.Context) error {
	pageHTML, err := p.backend.IndexPage(ctx)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	return p.Mount(pageHTML)
}

// Mount reads the server-rendered page: table rows, filter defaults, calendar
// cells, the add-exercise form toggle and the page log form.
func (p *Page) Mount(pageHTML string) error {
	doc, err := dom.ParsePage(strings.NewReader(pageHTML))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mountLocked(doc)
}

func (p *Page) mountLocked(doc *dom.Document) error {
	p.mounts++

	p.filters.SetRows(filter.ParseTable(doc))
	if c := form.ControlOf(doc.ByID(MuscleFilterID)); c != nil {
		p.filters.SetMuscle(c.Current())
	}
	if c := form.ControlOf(doc.ByID(ExerciseFilterID)); c != nil {
		p.filters.SetExercise(c.Current())
	}
	p.shortcuts = filter.ShortcutLabels(doc)

	if n := doc.ByID(ExerciseFormID); n != nil {
		style := strings.ReplaceAll(dom.AttrOr(n, "style", ""), " ", "")
		p.exerciseFormVisible = strings.Contains(style, "display:block")
	}

	for _, cal := range doc.FindAll(dom.ByClass(ClassCalendar)) {
		for _, cell := range dom.FindAll(cal, dom.And(dom.ByTag("td"), dom.ByAttr(calendar.AttrDate))) {
			date := dom.AttrOr(cell, calendar.AttrDate, "")
			if groups := splitMuscles(dom.AttrOr(cell, AttrMuscles, "")); len(groups) > 0 {
				p.marks[date] = groups
			}
		}
	}

	n := dom.Find(doc.Root, dom.And(dom.ByTag("form"), dom.ByID(LogFormID)))
	if n == nil {
		p.dropLogFormLocked()
		return nil
	}
	return p.bindLogFormLocked(dom.Render(n))
}

func (p *Page) bindLogFormLocked(formHTML string) error {
	p.dropLogFormLocked()

	f, err := form.Parse(formHTML, LogFormID)
	if err != nil {
		return fmt.Errorf("bind page log form: %w", err)
	}
	dateNode := dom.Find(f.Node(), dom.ByID(DateInputID))
	if c := f.Control(dateNode); c != nil && c.Current() == "" {
		c.Value = p.now().UTC().Format(gymlog.DateLayout)
	}

	p.logFormSeq++
	list, err := entries.Bind(f, p.router, fmt.Sprintf("%s-%d", PageLogFormID, p.logFormSeq),
		entries.WithGuard(p.locked),
	)
	if err != nil && !errors.Is(err, entries.ErrNoContainer) {
		return fmt.Errorf("bind page log form entries: %w", err)
	}

	p.logFormHTML = formHTML
	p.logForm = f
	p.logEntries = list
	log.Debugf("page: log form bound, %d entry rows", p.logEntryCountLocked())
	return nil
}

// locked runs fn under the page lock. Row routes of the page log form use it.
func (p *Page) locked(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn()
}

func (p *Page) dropLogFormLocked() {
	if p.logEntries != nil {
		p.logEntries.Detach()
	}
	p.logForm = nil
	p.logEntries = nil
}

// resetLogFormLocked brings the page log form back to its server markup.
func (p *Page) resetLogFormLocked() error {
	if p.logFormHTML == "" {
		return nil
	}
	return p.bindLogFormLocked(p.logFormHTML)
}

// resetLocked drops all client state, as a full page reload would.
func (p *Page) resetLocked() {
	p.filters.Reset()
	p.filters.SetRows(nil)
	p.shortcuts = nil
	p.exerciseFormVisible = false
	p.marks = make(map[string][]string)
	p.errors = nil
	p.dropLogFormLocked()
	p.logFormHTML = ""
}

func (p *Page) logEntryCountLocked() int {
	if p.logEntries == nil {
		return 0
	}
	return p.logEntries.Len()
}

func splitMuscles(s string) []string {
	var groups []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
