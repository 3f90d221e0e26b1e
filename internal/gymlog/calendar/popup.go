// Package calendar renders the per-day workout popup of the calendar view.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/modal"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	AttrDate  = "data-date"
	NoRecords = "No records."
)

var dayTemplate = template.Must(template.New("day").Parse(
	`<h3>{{.Date}}</h3>` +
		`{{if not .Records}}<p>` + NoRecords + `</p>` +
		`{{else}}<table><tr><th>Exercise</th><th>Muscle group</th><th>Sets</th><th>Reps</th><th>Weight</th></tr>` +
		`{{range .Records}}<tr><td>{{.Name}}</td><td>{{.MuscleGroup}}</td><td>{{.Sets}}</td><td>{{.Reps}}</td><td>{{.Weight}}</td></tr>{{end}}` +
		`</table>{{end}}`,
))

// Render returns the popup body for date. Records keep the server order.
func Render(date string, records []gymlog.DayRecord) (string, error) {
	var buf bytes.Buffer
	err := dayTemplate.Execute(&buf, struct {
		Date    string
		Records []gymlog.DayRecord
	}{
		Date:    date,
		Records: records,
	})
	if err != nil {
		return "", fmt.Errorf("render day %s: %w", date, err)
	}
	return buf.String(), nil
}

type dayDataSource interface {
	DayData(ctx context.Context, date string) ([]gymlog.DayRecord, error)
}

type Popup struct {
	source dayDataSource
	modal  *modal.Modal
}

func NewPopup(source dayDataSource, m *modal.Modal) *Popup {
	return &Popup{
		source: source,
		modal:  m,
	}
}

// Open fetches the records of date and shows them in the shared modal. It
// returns the records that were rendered.
func (p *Popup) Open(ctx context.Context, date string) (_ []gymlog.DayRecord, err error) {
	ctx, span := tracing.StartSpan(ctx, "calendar.open")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("date", date))

	t := p.modal.Begin(ctx)
	records, err := p.source.DayData(t.Context(), date)
	if err != nil {
		p.modal.Abandon(t)
		return nil, fmt.Errorf("load day %s: %w", date, err)
	}

	html, err := Render(date, records)
	if err != nil {
		p.modal.Abandon(t)
		return nil, err
	}

	if err := p.modal.Deliver(t, html); err != nil {
		return nil, err
	}
	return records, nil
}
