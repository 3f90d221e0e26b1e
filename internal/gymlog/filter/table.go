package filter

import (
	"strings"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/dom"

	"golang.org/x/net/html"
)

const (
	TableID          = "workoutTable"
	ClassShortcut    = "exercise-shortcut"
	ClassEditWorkout = "edit-workout"
	AttrMuscle       = "data-muscle"
	AttrExercise     = "data-exercise"
)

// ParseTable reads the data rows of the workout table. Muscle group and
// exercise come from the row data attributes, the remaining columns from the
// cells in date, muscle, exercise, sets, reps, weight order.
func ParseTable(doc *dom.Document) []gymlog.WorkoutRow {
	table := doc.ByID(TableID)
	if table == nil {
		return nil
	}

	body := dom.Find(table, dom.ByTag("tbody"))
	if body == nil {
		body = table
	}

	var rows []gymlog.WorkoutRow
	for _, tr := range dom.FindAll(body, dom.ByTag("tr")) {
		muscle, hasMuscle := dom.Attr(tr, AttrMuscle)
		exercise, hasExercise := dom.Attr(tr, AttrExercise)
		if !hasMuscle && !hasExercise {
			// header row
			continue
		}

		cells := cellTexts(tr)
		row := gymlog.WorkoutRow{
			ID:          dom.AttrOr(tr, "data-id", ""),
			MuscleGroup: muscle,
			Exercise:    exercise,
			Date:        cellAt(cells, 0),
			Sets:        cellAt(cells, 3),
			Reps:        cellAt(cells, 4),
			Weight:      cellAt(cells, 5),
			Intensity:   cellAt(cells, 6),
		}
		if row.ID == "" {
			if edit := dom.Find(tr, dom.ByClass(ClassEditWorkout)); edit != nil {
				row.ID = dom.AttrOr(edit, "data-id", "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ShortcutLabels returns the trimmed texts of the exercise shortcut links.
func ShortcutLabels(doc *dom.Document) []string {
	var labels []string
	for _, n := range doc.FindAll(dom.ByClass(ClassShortcut)) {
		labels = append(labels, strings.TrimSpace(dom.Text(n)))
	}
	return labels
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, strings.TrimSpace(dom.Text(c)))
		}
	}
	return cells
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
