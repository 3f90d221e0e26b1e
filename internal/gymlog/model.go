package gymlog

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	DateLayout = "2006-01-02"

	// option data attributes carrying recommended defaults
	AttrDefaultSets   = "data-sets"
	AttrDefaultReps   = "data-reps"
	AttrDefaultWeight = "data-weight"
)

// ExerciseOption is a selectable exercise inside an entry row. An empty
// default means the matching input must not be overwritten.
type ExerciseOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sets   string `json:"sets,omitempty"`
	Reps   string `json:"reps,omitempty"`
	Weight string `json:"weight,omitempty"`
}

func (o ExerciseOption) HasDefaults() bool {
	return o.Sets != "" || o.Reps != "" || o.Weight != ""
}

// WorkoutRow is one row of the history table. The server owns it, the
// client only decides if it is shown.
type WorkoutRow struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	MuscleGroup string `json:"muscleGroup"`
	Exercise    string `json:"exercise"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
	Weight      string `json:"weight"`
	Intensity   string `json:"intensity,omitempty"`
}

// DayRecord is a single logged exercise returned by the day lookup.
type DayRecord struct {
	Name        string   `json:"name"`
	MuscleGroup string   `json:"muscle_group"`
	Sets        Verbatim `json:"sets"`
	Reps        Verbatim `json:"reps"`
	Weight      Verbatim `json:"weight"`
}

// Verbatim is a JSON value kept as the server wrote it. Strings are unquoted,
// any other token (numbers, null, booleans) keeps its literal text.
type Verbatim string

func (v *Verbatim) UnmarshalJSON(b []byte) error {
	raw := json.RawMessage(bytes.TrimSpace(b))
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = Verbatim(s)
		return nil
	}
	*v = Verbatim(raw)
	return nil
}

// MarshalJSON writes literal tokens back as they came and quotes the rest.
func (v Verbatim) MarshalJSON() ([]byte, error) {
	if v != "" && v[0] != '"' && json.Valid([]byte(v)) {
		return []byte(v), nil
	}
	return json.Marshal(string(v))
}

// MuscleGroups returns the distinct muscle groups of the records, in order of
// first appearance.
func MuscleGroups(records []DayRecord) []string {
	seen := make(map[string]bool, len(records))
	var groups []string
	for _, r := range records {
		mg := strings.TrimSpace(r.MuscleGroup)
		if mg == "" || seen[mg] {
			continue
		}
		seen[mg] = true
		groups = append(groups, mg)
	}
	return groups
}
