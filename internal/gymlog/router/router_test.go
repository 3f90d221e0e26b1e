package router_test

import (
	"context"
	"errors"
	"testing"

	"github.com/2beens/gymlog/internal/gymlog/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Dispatch(t *testing.T) {
	r := router.New()

	var got []string
	r.Handle(router.Click, router.RoleEditWorkout, "", func(_ context.Context, ev router.Event) error {
		got = append(got, "any:"+ev.Target.ID)
		return nil
	})
	r.Handle(router.Click, router.RoleEditWorkout, "7", func(_ context.Context, ev router.Event) error {
		got = append(got, "exact:"+ev.Target.ID)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, r.Dispatch(ctx, router.Event{Type: router.Click, Target: router.Target{Role: router.RoleEditWorkout, ID: "3"}}))
	require.NoError(t, r.Dispatch(ctx, router.Event{Type: router.Click, Target: router.Target{Role: router.RoleEditWorkout, ID: "7"}}))
	assert.Equal(t, []string{"any:3", "exact:7"}, got)

	err := r.Dispatch(ctx, router.Event{Type: router.Change, Target: router.Target{Role: router.RoleEditWorkout, ID: "3"}})
	assert.True(t, errors.Is(err, router.ErrNoRoute))
	assert.Contains(t, err.Error(), "change@edit-workout#3")
}

func TestRouter_HandlerError(t *testing.T) {
	r := router.New()
	boom := errors.New("boom")
	r.Handle(router.Submit, router.RoleFormSubmit, "log", func(context.Context, router.Event) error {
		return boom
	})

	err := r.Dispatch(context.Background(), router.Event{Type: router.Submit, Target: router.Target{Role: router.RoleFormSubmit, ID: "log"}})
	assert.Equal(t, boom, err)
}

func TestRouter_RemoveElement(t *testing.T) {
	r := router.New()
	noop := func(context.Context, router.Event) error { return nil }
	r.Handle(router.Click, router.RoleRemoveEntry, "row-1", noop)
	r.Handle(router.Change, router.RoleRemoveEntry, "row-1", noop)
	r.Handle(router.Click, router.RoleRemoveEntry, "row-2", noop)
	r.Handle(router.Change, router.RoleExerciseSelect, "row-1", noop)
	assert.Equal(t, 4, r.Len())

	r.RemoveElement(router.RoleRemoveEntry, "row-1")
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Has(router.Click, router.RoleRemoveEntry, "row-1"))
	assert.True(t, r.Has(router.Click, router.RoleRemoveEntry, "row-2"))
	assert.True(t, r.Has(router.Change, router.RoleExerciseSelect, "row-1"))

	r.Remove(router.Click, router.RoleRemoveEntry, "row-2")
	assert.False(t, r.Has(router.Click, router.RoleRemoveEntry, "row-2"))
}

func TestRouter_HandlerMayChangeRoutes(t *testing.T) {
	r := router.New()
	r.Handle(router.Click, router.RoleAddEntry, "log", func(context.Context, router.Event) error {
		r.Handle(router.Click, router.RoleRemoveEntry, "new-row", func(context.Context, router.Event) error {
			r.RemoveElement(router.RoleRemoveEntry, "new-row")
			return nil
		})
		return nil
	})

	ctx := context.Background()
	require.NoError(t, r.Dispatch(ctx, router.Event{Type: router.Click, Target: router.Target{Role: router.RoleAddEntry, ID: "log"}}))
	require.True(t, r.Has(router.Click, router.RoleRemoveEntry, "new-row"))
	require.NoError(t, r.Dispatch(ctx, router.Event{Type: router.Click, Target: router.Target{Role: router.RoleRemoveEntry, ID: "new-row"}}))
	assert.False(t, r.Has(router.Click, router.RoleRemoveEntry, "new-row"))
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "click@modal-overlay", router.Event{Type: router.Click, Target: router.Target{Role: router.RoleOverlay}}.String())
	assert.Equal(t, "change@exercise-select#r1", router.Event{Type: router.Change, Target: router.Target{Role: router.RoleExerciseSelect, ID: "r1"}}.String())

	target := router.Target{Data: map[string]string{"memo": "slow"}}
	assert.Equal(t, "slow", target.Get("memo"))
	assert.Equal(t, "", target.Get("video"))
}
