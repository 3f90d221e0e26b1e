package form_test

import (
	"errors"
	"testing"

	"github.com/2beens/gymlog/internal/gymlog/dom"
	"github.com/2beens/gymlog/internal/gymlog/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logFormFragment = `
<form id="logForm" method="post" action="/log">
  <input type="date" id="dateInput" name="date" value="">
  <div id="entries">
    <div class="entry">
      <select name="exercise_id">
        <option value="">-- pick --</option>
        <option value="1" data-sets="4" data-reps="8" data-weight="60">Bench Press</option>
        <option value="2" selected>Squat</option>
      </select>
      <input type="number" name="sets" value="3">
      <input type="number" name="reps" value="10">
      <input type="number" name="weight" step="2.5" value="20">
    </div>
  </div>
  <textarea name="note">warmup first</textarea>
  <input type="checkbox" name="pr" value="yes">
  <input type="text" name="locked" value="x" disabled>
  <button type="button" id="addEntry">Add</button>
  <input type="submit" name="go" value="Save">
</form>`

func parseLogForm(t *testing.T) *form.Form {
	t.Helper()
	f, err := form.Parse(logFormFragment, "logForm")
	require.NoError(t, err)
	return f
}

func TestParse(t *testing.T) {
	f := parseLogForm(t)
	assert.Equal(t, "logForm", f.ID())
	assert.Equal(t, "form", f.Node().Data)

	first, err := form.Parse(logFormFragment, "")
	require.NoError(t, err)
	assert.Equal(t, "logForm", first.ID())

	_, err = form.Parse(logFormFragment, "editWorkoutForm")
	assert.True(t, errors.Is(err, form.ErrFormNotFound))
	_, err = form.Parse(`<div>no form</div>`, "")
	assert.True(t, errors.Is(err, form.ErrFormNotFound))
}

func TestControl_Defaults(t *testing.T) {
	f := parseLogForm(t)

	sel := f.Field("exercise_id")
	require.NotNil(t, sel)
	assert.Equal(t, form.KindSelect, sel.Kind)
	require.Len(t, sel.Options, 3)
	assert.Equal(t, 2, sel.DefaultIndex())
	assert.Equal(t, "2", sel.Default())
	assert.Equal(t, "2", sel.Current())
	assert.Equal(t, "Bench Press", sel.Options[1].Label)
	assert.Equal(t, "60", sel.Options[1].Data("data-weight"))

	weight := f.Field("weight")
	require.NotNil(t, weight)
	assert.Equal(t, "number", weight.Type)
	assert.Equal(t, "20", weight.Current())
	step, ok := weight.Step()
	assert.True(t, ok)
	assert.Equal(t, "2.5", step)

	note := f.Field("note")
	require.NotNil(t, note)
	assert.Equal(t, form.KindTextArea, note.Kind)
	assert.Equal(t, "warmup first", note.Current())

	assert.Nil(t, f.Field("missing"))
	assert.Nil(t, f.Control(f.Node()))
}

func TestControl_SelectWithoutMarkedOption(t *testing.T) {
	f, err := form.Parse(`<form><select name="s"><option value="a">A</option><option>B </option></select><select name="empty"></select></form>`, "")
	require.NoError(t, err)

	s := f.Field("s")
	assert.Equal(t, 0, s.DefaultIndex())
	assert.Equal(t, "a", s.Current())
	// an option without a value submits its text
	require.NoError(t, s.SetValue("B"))
	assert.Equal(t, "B", s.Current())
	assert.True(t, errors.Is(s.SetValue("C"), form.ErrOptionNotFound))

	empty := f.Field("empty")
	assert.Equal(t, -1, empty.DefaultIndex())
	assert.Equal(t, "", empty.Current())
	_, ok := empty.SelectedOption()
	assert.False(t, ok)
}

func TestForm_SetAndReset(t *testing.T) {
	f := parseLogForm(t)

	require.NoError(t, f.Set("weight", "62.5"))
	require.NoError(t, f.Set("exercise_id", "1"))
	assert.Equal(t, "62.5", f.Field("weight").Current())
	assert.Equal(t, "1", f.Field("exercise_id").Current())
	// markup keeps the default
	assert.Equal(t, "20", dom.AttrOr(f.Field("weight").Node(), "value", ""))

	assert.True(t, errors.Is(f.Set("missing", "1"), form.ErrControlNotFound))
	assert.True(t, errors.Is(f.Set("exercise_id", "9"), form.ErrOptionNotFound))

	f.Field("weight").Reset()
	f.Field("exercise_id").Reset()
	assert.Equal(t, "20", f.Field("weight").Current())
	assert.Equal(t, "2", f.Field("exercise_id").Current())
}

func TestForm_Values(t *testing.T) {
	f := parseLogForm(t)
	require.NoError(t, f.Set("date", "2024-03-01"))
	require.NoError(t, f.Set("reps", "12"))

	assert.Equal(t, []form.Value{
		{Name: "date", Value: "2024-03-01"},
		{Name: "exercise_id", Value: "2"},
		{Name: "sets", Value: "3"},
		{Name: "reps", Value: "12"},
		{Name: "weight", Value: "20"},
		{Name: "note", Value: "warmup first"},
	}, f.Values())

	f.Field("pr").Checked = true
	values := f.Values()
	assert.Equal(t, form.Value{Name: "pr", Value: "yes"}, values[len(values)-1])
}

func TestForm_Release(t *testing.T) {
	f := parseLogForm(t)
	row := dom.Find(f.Node(), dom.ByClass("entry"))
	require.NoError(t, f.Set("sets", "5"))

	f.Release(row)
	// a released control comes back with the markup defaults
	assert.Equal(t, "3", f.Field("sets").Current())
	assert.Len(t, f.ControlsIn(row), 4)
}

func TestForm_Render(t *testing.T) {
	f := parseLogForm(t)
	require.NoError(t, f.Set("weight", "62.5"))
	require.NoError(t, f.Set("exercise_id", "1"))
	require.NoError(t, f.Set("note", "heavy"))

	rendered, err := form.Parse(f.Render(), "logForm")
	require.NoError(t, err)
	assert.Equal(t, "62.5", rendered.Field("weight").Current())
	assert.Equal(t, "1", rendered.Field("exercise_id").Current())
	assert.Equal(t, "heavy", rendered.Field("note").Current())

	// the bound document is not touched by rendering
	assert.Equal(t, "20", dom.AttrOr(f.Field("weight").Node(), "value", ""))
	options := dom.FindAll(f.Field("exercise_id").Node(), dom.ByTag("option"))
	require.Len(t, options, 3)
	_, marked := dom.Attr(options[1], "selected")
	assert.False(t, marked)
}

func TestRelaxWeightSteps(t *testing.T) {
	doc, err := dom.ParseFragment(`
<form>
  <input name="weight" step="2.5">
  <input name="weight" step="any">
  <input name="weight">
  <input name="reps" step="1">
</form>`)
	require.NoError(t, err)

	assert.Equal(t, 2, form.RelaxWeightSteps(doc))
	for _, n := range doc.FindAll(dom.ByAttrValue("name", "weight")) {
		_, ok := dom.Attr(n, "step")
		assert.False(t, ok)
	}
	reps := doc.FindAll(dom.ByAttrValue("name", "reps"))
	require.Len(t, reps, 1)
	assert.Equal(t, "1", dom.AttrOr(reps[0], "step", ""))

	assert.Zero(t, form.RelaxWeightSteps(doc))
}

func TestControlOf(t *testing.T) {
	doc, err := dom.ParseFragment(`<select id="muscleFilter"><option value="">All</option><option value="legs" selected>Legs</option></select><div id="d"></div>`)
	require.NoError(t, err)

	c := form.ControlOf(doc.ByID("muscleFilter"))
	require.NotNil(t, c)
	assert.Equal(t, "legs", c.Current())
	assert.Nil(t, form.ControlOf(doc.ByID("d")))
	assert.Nil(t, form.ControlOf(nil))
}
