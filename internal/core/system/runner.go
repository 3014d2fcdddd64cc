package system

import (
	"sort"
	"time"

	"github.com/rtype/engine/internal/core/event"
)

// Runner executes systems in phase order each tick. Systems sharing a
// phase run in registration order. Each tick runs to completion before the
// next begins.
type Runner struct {
	systems []System
	sorted  bool
	bus     *event.Bus
	ticks   uint64
}

// NewRunner creates a runner. When bus is non-nil its buffers are swapped
// and dispatched at the start of every full tick.
func NewRunner(bus *event.Bus) *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		bus:     bus,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	if r.bus != nil {
		r.bus.SwapBuffers()
		r.bus.DispatchAll()
	}
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of the given phase. It does not count as
// a tick and does not touch the event bus.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Ticks returns the number of completed Tick calls.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
