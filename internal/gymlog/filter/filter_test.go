package filter_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/dom"
	"github.com/2beens/gymlog/internal/gymlog/filter"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMuscles   = []string{"legs", "chest", "back", "shoulders", "arms"}
	testExercises = []string{"Squat", "Bench Press", "Deadlift", "Overhead Press", "Curl"}
)

func randomRows(faker *gofakeit.Faker, n int) []gymlog.WorkoutRow {
	rows := make([]gymlog.WorkoutRow, n)
	for i := range rows {
		rows[i] = gymlog.WorkoutRow{
			ID:          strconv.Itoa(i + 1),
			Date:        faker.Date().Format(gymlog.DateLayout),
			MuscleGroup: faker.RandomString(testMuscles),
			Exercise:    faker.RandomString(testExercises),
			Sets:        strconv.Itoa(faker.Number(1, 6)),
			Reps:        strconv.Itoa(faker.Number(1, 15)),
			Weight:      strconv.Itoa(faker.Number(0, 200)),
		}
	}
	return rows
}

func TestApply_IsConjunctionOfDimensions(t *testing.T) {
	faker := gofakeit.New(42)
	rows := randomRows(faker, 200)

	for i := 0; i < 50; i++ {
		s := filter.State{}
		if faker.Bool() {
			s.Muscle = faker.RandomString(testMuscles)
		}
		if faker.Bool() {
			s.Exercise = faker.RandomString(testExercises)
		}

		mask := filter.Apply(s, rows)
		muscleOnly := filter.Apply(filter.State{Muscle: s.Muscle}, rows)
		exerciseOnly := filter.Apply(filter.State{Exercise: s.Exercise}, rows)
		require.Len(t, mask, len(rows))
		for j, row := range rows {
			assert.Equal(t, muscleOnly[j] && exerciseOnly[j], mask[j], "state %+v row %+v", s, row)
			assert.Equal(t, s.Muscle == "" || row.MuscleGroup == s.Muscle, muscleOnly[j])
			assert.Equal(t, s.Exercise == "" || row.Exercise == s.Exercise, exerciseOnly[j])
		}
	}
}

func TestApply_EmptyStateShowsEverything(t *testing.T) {
	rows := randomRows(gofakeit.New(7), 30)
	assert.True(t, filter.State{}.Empty())
	for _, visible := range filter.Apply(filter.State{}, rows) {
		assert.True(t, visible)
	}
}

func TestEngine(t *testing.T) {
	rows := []gymlog.WorkoutRow{
		{ID: "1", MuscleGroup: "legs", Exercise: "Squat"},
		{ID: "2", MuscleGroup: "chest", Exercise: "Bench Press"},
		{ID: "3", MuscleGroup: "legs", Exercise: "Lunges"},
		{ID: "4", MuscleGroup: "chest", Exercise: "Squat"},
	}
	e := filter.NewEngine(rows)
	assert.Equal(t, []bool{true, true, true, true}, e.Mask())

	e.SetMuscle("legs")
	assert.Equal(t, []bool{true, false, true, false}, e.Mask())

	e.SetExercise("Squat")
	assert.Equal(t, []bool{true, false, false, false}, e.Mask())
	assert.Equal(t, filter.State{Muscle: "legs", Exercise: "Squat"}, e.State())

	e.SetMuscle("")
	assert.Equal(t, []bool{true, false, false, true}, e.Mask())

	e.Shortcut("  Bench Press \n")
	assert.Equal(t, "Bench Press", e.State().Exercise)
	require.Len(t, e.Visible(), 1)
	assert.Equal(t, "2", e.Visible()[0].ID)

	// new rows keep the filters
	e.SetRows(append(rows, gymlog.WorkoutRow{ID: "5", MuscleGroup: "chest", Exercise: "Bench Press"}))
	assert.Equal(t, "Bench Press", e.State().Exercise)
	assert.Len(t, e.Visible(), 2)

	e.Reset()
	assert.True(t, e.State().Empty())
	assert.Len(t, e.Visible(), 5)
}

const testTable = `<html><body>
<a class="exercise-shortcut"> Squat </a>
<a class="exercise-shortcut">Bench Press</a>
<table id="workoutTable">
  <thead><tr><th>Date</th><th>Muscle</th><th>Exercise</th><th>Sets</th><th>Reps</th><th>Weight</th><th>Intensity</th></tr></thead>
  <tbody>
    <tr data-id="11" data-muscle="legs" data-exercise="Squat">
      <td>2024-03-01</td><td>legs</td><td>Squat</td><td>5</td><td>5</td><td>100</td><td>high</td>
    </tr>
    <tr data-muscle="chest" data-exercise="Bench Press">
      <td>2024-03-02</td><td>chest</td><td>Bench Press</td><td>3</td><td>8</td><td>62.5</td><td>mid</td>
      <td><button class="edit-workout" data-id="12">Edit</button></td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseTable(t *testing.T) {
	doc, err := dom.ParsePage(strings.NewReader(testTable))
	require.NoError(t, err)

	rows := filter.ParseTable(doc)
	require.Len(t, rows, 2)
	assert.Equal(t, gymlog.WorkoutRow{
		ID:          "11",
		Date:        "2024-03-01",
		MuscleGroup: "legs",
		Exercise:    "Squat",
		Sets:        "5",
		Reps:        "5",
		Weight:      "100",
		Intensity:   "high",
	}, rows[0])
	assert.Equal(t, "12", rows[1].ID)
	assert.Equal(t, "62.5", rows[1].Weight)
	assert.Equal(t, "mid", rows[1].Intensity)

	assert.Equal(t, []string{"Squat", "Bench Press"}, filter.ShortcutLabels(doc))

	empty, err := dom.ParsePage(strings.NewReader(`<p>nothing</p>`))
	require.NoError(t, err)
	assert.Nil(t, filter.ParseTable(empty))
}
