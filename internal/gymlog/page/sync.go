package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/dom"
	"github.com/2beens/gymlog/internal/gymlog/filter"
	"github.com/2beens/gymlog/internal/gymlog/remote"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// synchronize brings the client views in line with the backend after an
// accepted submission. The modal is closed either way.
func (p *Page) synchronize(ctx context.Context, s remote.Submission) error {
	p.modal.Close()

	switch p.strategy {
	case SyncReload:
		return p.reload(ctx)
	default:
		return p.invalidate(ctx, s)
	}
}

// reload drops all client state and mounts a freshly fetched page.
func (p *Page) reload(ctx context.Context) error {
	pageHTML, err := p.backend.IndexPage(ctx)
	if err != nil {
		return fmt.Errorf("reload page: %w", err)
	}
	doc, err := dom.ParsePage(strings.NewReader(pageHTML))
	if err != nil {
		return fmt.Errorf("reload page: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	log.Debugln("page: reloaded")
	return p.mountLocked(doc)
}

// invalidate refetches the table rows and the marks of the touched days.
// Filters, the page log form and everything else stay as they are.
func (p *Page) invalidate(ctx context.Context, s remote.Submission) error {
	var errs error

	if err := p.refreshTable(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	dates := p.invalidatedDates(s)
	for _, date := range dates {
		records, err := p.backend.DayData(ctx, date)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("refresh day %s: %w", date, err))
			continue
		}

		p.mu.Lock()
		p.setMarksLocked(date, records)
		p.mu.Unlock()
		p.metrics.CounterViewInvalidated.WithLabelValues("calendar").Inc()
	}

	log.Debugf("page: invalidated views after %s %s, dates %v", s.Kind, s.ID, dates)
	return errs
}

// invalidatedDates returns the days whose marks a submission may have
// changed. An exercise edit renames or regroups that exercise on every day it
// was logged, so all marked days are refetched.
func (p *Page) invalidatedDates(s remote.Submission) []string {
	if s.Kind != remote.FormEditExercise {
		return s.Dates
	}

	dates := p.CalendarDates()
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		seen[d] = true
	}
	for _, d := range s.Dates {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates
}

func (p *Page) refreshTable(ctx context.Context) error {
	pageHTML, err := p.backend.IndexPage(ctx)
	if err != nil {
		return fmt.Errorf("refresh table: %w", err)
	}
	doc, err := dom.ParsePage(strings.NewReader(pageHTML))
	if err != nil {
		return fmt.Errorf("refresh table: %w", err)
	}

	rows := filter.ParseTable(doc)
	shortcuts := filter.ShortcutLabels(doc)

	p.mu.Lock()
	p.filters.SetRows(rows)
	p.shortcuts = shortcuts
	p.mu.Unlock()

	p.metrics.CounterViewInvalidated.WithLabelValues("table").Inc()
	return nil
}
