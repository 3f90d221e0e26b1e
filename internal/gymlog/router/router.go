// Package router is the event routing table of the page. Elements register
// their handlers under a role and an identifier when they are created, so an
// element added later is reachable the same way as one present at mount.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrNoRoute = errors.New("no route for event")

type Role string

const (
	RoleOverlay            Role = "modal-overlay"
	RoleModalClose         Role = "modal-close"
	RoleModalContent       Role = "modal-content"
	RoleAddEntry           Role = "add-entry"
	RoleRemoveEntry        Role = "remove-entry"
	RoleExerciseSelect     Role = "exercise-select"
	RoleFormField          Role = "form-field"
	RoleFormSubmit         Role = "form-submit"
	RoleMuscleFilter       Role = "muscle-filter"
	RoleExerciseFilter     Role = "exercise-filter"
	RoleExerciseShortcut   Role = "exercise-shortcut"
	RoleCalendarDay        Role = "calendar-day"
	RoleEditWorkout        Role = "edit-workout"
	RoleEditExercise       Role = "edit-exercise"
	RoleExerciseNote       Role = "exercise-note"
	RoleOpenLogForm        Role = "open-log-form"
	RoleToggleExerciseForm Role = "toggle-exercise-form"
	RoleCancelExerciseForm Role = "cancel-exercise-form"
)

type EventType string

const (
	Click  EventType = "click"
	Change EventType = "change"
	Submit EventType = "submit"
)

// Target identifies the element an event was fired on.
type Target struct {
	Role Role              `json:"role"`
	ID   string            `json:"id,omitempty"`
	Text string            `json:"text,omitempty"`
	Data map[string]string `json:"data,omitempty"`
}

func (t Target) Get(key string) string {
	return t.Data[key]
}

type Event struct {
	Type   EventType `json:"type"`
	Target Target    `json:"target"`
	Value  string    `json:"value,omitempty"`
}

func (e Event) String() string {
	if e.Target.ID == "" {
		return fmt.Sprintf("%s@%s", e.Type, e.Target.Role)
	}
	return fmt.Sprintf("%s@%s#%s", e.Type, e.Target.Role, e.Target.ID)
}

type Handler func(ctx context.Context, ev Event) error

type routeKey struct {
	typ  EventType
	role Role
	id   string
}

type Router struct {
	mu     sync.RWMutex
	routes map[routeKey]Handler
}

func New() *Router {
	return &Router{
		routes: make(map[routeKey]Handler),
	}
}

// Handle registers h for events of typ on elements with role and id. An empty
// id registers a handler for every element of that role; exact ids win.
func (r *Router) Handle(typ EventType, role Role, id string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[routeKey{typ: typ, role: role, id: id}] = h
}

func (r *Router) Remove(typ EventType, role Role, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, routeKey{typ: typ, role: role, id: id})
}

// RemoveElement drops every route registered for the element.
func (r *Router) RemoveElement(role Role, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.routes {
		if k.role == role && k.id == id {
			delete(r.routes, k)
		}
	}
}

func (r *Router) Has(typ EventType, role Role, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[routeKey{typ: typ, role: role, id: id}]
	return ok
}

func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

func (r *Router) lookup(ev Event) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.routes[routeKey{typ: ev.Type, role: ev.Target.Role, id: ev.Target.ID}]; ok {
		return h, true
	}
	h, ok := r.routes[routeKey{typ: ev.Type, role: ev.Target.Role}]
	return h, ok
}

// Dispatch runs the handler registered for the event. Handlers run without
// the table lock held, so they may register or remove routes.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	h, ok := r.lookup(ev)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRoute, ev)
	}
	log.Tracef("router: dispatching %s", ev)
	return h(ctx, ev)
}
