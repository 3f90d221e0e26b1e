// Package modal is the single shared overlay. It only displays content: it
// holds at most one piece of HTML, and new content always replaces the old.
package modal

import (
	"context"
	"errors"
	"sync"

	"github.com/2beens/gymlog/internal/gymlog/router"
	"github.com/2beens/gymlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

var ErrStaleContent = errors.New("modal content superseded")

type Phase string

const (
	Closed Phase = "closed"
	Open   Phase = "open"
)

// Content is the serializable state of the modal.
type Content struct {
	HTML   string `json:"html"`
	Active bool   `json:"active"`
}

// Ticket ties an in-flight load to the modal generation it was started for.
type Ticket struct {
	seq uint64
	ctx context.Context
}

func (t Ticket) Context() context.Context {
	return t.ctx
}

// Seq is the content generation the ticket delivers.
func (t Ticket) Seq() uint64 {
	return t.seq
}

type Modal struct {
	mu         sync.Mutex
	phase      Phase
	html       string
	seq        uint64
	contentSeq uint64
	cancel     context.CancelFunc
	onRelease  []func(contentSeq uint64)

	metrics *metrics.Manager
}

func New(metricsManager *metrics.Manager) *Modal {
	return &Modal{
		phase:   Closed,
		metrics: metricsManager,
	}
}

// OnRelease registers fn to run whenever the shown content leaves the modal,
// by a close or by a replacement. fn gets the generation of the released
// content and runs without the modal lock held.
func (m *Modal) OnRelease(fn func(contentSeq uint64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRelease = append(m.onRelease, fn)
}

// Open replaces the content and shows the overlay. Any load still in flight is
// cancelled, its response would belong to older content.
func (m *Modal) Open(html string) uint64 {
	m.mu.Lock()
	m.seq++
	m.cancelPendingLocked()
	released, hooks := m.openLocked(html)
	seq := m.seq
	m.mu.Unlock()

	runHooks(hooks, released)
	return seq
}

func (m *Modal) openLocked(html string) (released uint64, hooks []func(uint64)) {
	if m.phase == Open {
		released = m.contentSeq
		hooks = append(hooks, m.onRelease...)
	}
	m.html = html
	m.phase = Open
	m.contentSeq = m.seq
	m.metrics.GaugeModalOpen.Set(1)
	return released, hooks
}

// Close hides the overlay and cancels any in-flight load.
func (m *Modal) Close() {
	m.mu.Lock()
	m.seq++
	m.cancelPendingLocked()
	var hooks []func(uint64)
	released := m.contentSeq
	if m.phase == Open {
		hooks = append(hooks, m.onRelease...)
	}
	m.phase = Closed
	m.html = ""
	m.metrics.GaugeModalOpen.Set(0)
	m.mu.Unlock()

	runHooks(hooks, released)
}

func runHooks(hooks []func(uint64), released uint64) {
	for _, fn := range hooks {
		fn(released)
	}
}

// HandleClick closes the modal when the click target is the overlay element
// itself or the close control. Clicks on anything inside the content area are
// ignored. It reports whether the modal was closed.
func (m *Modal) HandleClick(target router.Target) bool {
	switch target.Role {
	case router.RoleOverlay, router.RoleModalClose:
		m.Close()
		return true
	default:
		return false
	}
}

// Begin starts a new load generation. The previous in-flight load, if any, is
// cancelled. The returned ticket context is done once the load is delivered,
// superseded or abandoned.
func (m *Modal) Begin(ctx context.Context) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelPendingLocked()
	m.seq++
	loadCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	return Ticket{seq: m.seq, ctx: loadCtx}
}

// Deliver opens the modal with html if t is still the latest load. Late
// responses are dropped and ErrStaleContent is returned.
func (m *Modal) Deliver(t Ticket, html string) error {
	m.mu.Lock()
	if current := m.seq; t.seq != current {
		m.mu.Unlock()
		m.metrics.CounterStaleResponses.Inc()
		log.Debugf("modal: dropping stale content of load %d, current %d", t.seq, current)
		return ErrStaleContent
	}

	m.releasePendingLocked()
	released, hooks := m.openLocked(html)
	m.mu.Unlock()

	runHooks(hooks, released)
	return nil
}

// Abandon ends a load that failed. The modal stays as it was.
func (m *Modal) Abandon(t Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.seq == m.seq {
		m.releasePendingLocked()
	}
}

// Current reports whether t is the latest load generation.
func (m *Modal) Current(t Ticket) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return t.seq == m.seq
}

func (m *Modal) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Modal) IsOpen() bool {
	return m.Phase() == Open
}

func (m *Modal) Content() Content {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Content{
		HTML:   m.html,
		Active: m.phase == Open,
	}
}

// ShowingContent reports whether the content of generation seq is shown.
func (m *Modal) ShowingContent(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == Open && m.contentSeq == seq
}

// Refresh rewrites the shown content of generation seq in place, without
// touching pending loads. It is used when the live state of a form inside the
// modal changes. It reports whether the content was still shown.
func (m *Modal) Refresh(seq uint64, html string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Open || m.contentSeq != seq {
		return false
	}
	m.html = html
	return true
}

func (m *Modal) cancelPendingLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
	m.metrics.CounterCancelledLoads.Inc()
}

func (m *Modal) releasePendingLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
}
