// Package monitor arbitrates a one-lane bridge shared by vehicles heading
// North, vehicles heading South, and pedestrians.
//
// Entry happens in two phases, each behind its own gate. The fairness gate
// decides whether a newcomer may join its class queue at all: while the
// newcomer's class holds the lane and a rival class is queued, it must wait,
// so the incumbent stops growing once anyone else is waiting. The safety gate
// then admits the queued actor only when no rival class is on the lane.
// All six gates share one mutex.
package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"bridge/gate"

	"github.com/google/uuid"
)

type Monitor struct {
	mu sync.Mutex

	active  Counts
	waiting Counts
	// anonymous occupants per class, the remainder of active is listed in lane
	anonymous Counts
	calls     uint64
	lane      []Occupant

	queue [NumClasses]*gate.Gate // fairness
	enter [NumClasses]*gate.Gate // safety

	observer Observer
}

type Option func(*Monitor)

// WithObserver registers fn to receive every phase transition.
func WithObserver(fn Observer) Option {
	return func(m *Monitor) {
		m.observer = fn
	}
}

func New(options ...Option) *Monitor {
	m := &Monitor{}
	for _, c := range Classes {
		m.queue[c] = gate.New(&m.mu)
		m.enter[c] = gate.New(&m.mu)
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// RequestEnter blocks until an anonymous actor of class c is on the lane.
func (m *Monitor) RequestEnter(c Class) {
	m.Enter(Occupant{Class: c})
}

// RequestEnterContext is RequestEnter that gives up when ctx ends, see
// EnterContext.
func (m *Monitor) RequestEnterContext(ctx context.Context, c Class) error {
	return m.EnterContext(ctx, Occupant{Class: c})
}

// Leave takes an anonymous actor of class c off the lane.
func (m *Monitor) Leave(c Class) {
	m.Exit(Occupant{Class: c})
}

// Enter blocks until o is on the lane. It panics if o is already on it.
func (m *Monitor) Enter(o Occupant) {
	_ = m.EnterContext(context.Background(), o)
}

// EnterContext blocks until o is on the lane or ctx ends. On cancellation o
// is withdrawn from its class queue, nothing is left on the lane, and
// ctx.Err() is returned.
func (m *Monitor) EnterContext(ctx context.Context, o Occupant) error {
	c := o.Class
	c.mustBeValid()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if o.ID != uuid.Nil && m.indexOf(o.ID) >= 0 {
		panic(fmt.Sprintf("monitor: %v entering while already on the lane", o))
	}
	m.emit(o, Arrived)

	m.emit(o, QueueWait)
	if err := m.queue[c].AwaitContext(ctx, func() bool { return m.canQueue(c) }); err != nil {
		m.emit(o, Cancelled)
		return err
	}
	m.waiting[c]++
	m.emit(o, Queued)

	m.emit(o, EntryWait)
	if err := m.enter[c].AwaitContext(ctx, func() bool { return m.canEnter(c) }); err != nil {
		m.waiting[c]--
		m.wakeQueues(c)
		m.emit(o, Cancelled)
		return err
	}
	m.waiting[c]--
	m.active[c]++
	if o.ID == uuid.Nil {
		m.anonymous[c]++
	} else {
		m.lane = append(m.lane, o)
	}
	m.assertExclusive()
	m.emit(o, OnLane)

	m.wakeQueues(c)
	return nil
}

// Exit takes o off the lane. It panics unless o is on it.
func (m *Monitor) Exit(o Occupant) {
	c := o.Class
	c.mustBeValid()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.active[c] == 0 {
		panic(fmt.Sprintf("monitor: %v leaving while no %v is on the lane", o, c))
	}
	if o.ID == uuid.Nil {
		if m.anonymous[c] == 0 {
			panic(fmt.Sprintf("monitor: anonymous %v leaving but every %v on the lane is identified", c, c))
		}
		m.anonymous[c]--
	} else {
		i := m.indexOf(o.ID)
		if i < 0 {
			panic(fmt.Sprintf("monitor: %v leaving without having entered", o))
		}
		m.lane = slices.Delete(m.lane, i, i+1)
	}
	m.active[c]--
	m.emit(o, Departed)

	m.wakeEntries(c)
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state()
}

func (m *Monitor) String() string {
	return m.Snapshot().String()
}

// canQueue is the fairness gate: the lane holder stops admitting newcomers
// while any rival is queued.
func (m *Monitor) canQueue(c Class) bool {
	r := c.rivals()
	return m.active[c] == 0 || m.waiting[r[0]]+m.waiting[r[1]] == 0
}

// canEnter is the safety gate.
func (m *Monitor) canEnter(c Class) bool {
	r := c.rivals()
	return m.active[r[0]] == 0 && m.active[r[1]] == 0
}

// wakeQueues re-evaluates the fairness gates of c's rivals, which depend on
// waiting[c].
func (m *Monitor) wakeQueues(c Class) {
	for _, r := range c.rivals() {
		m.queue[r].Broadcast()
	}
}

// wakeEntries re-evaluates the safety gates of c's rivals, which depend on
// active[c].
func (m *Monitor) wakeEntries(c Class) {
	for _, r := range c.rivals() {
		m.enter[r].Broadcast()
	}
}

func (m *Monitor) assertExclusive() {
	busy := 0
	for _, n := range m.active {
		if n > 0 {
			busy++
		}
	}
	if busy > 1 {
		panic(fmt.Sprintf("monitor: lane shared by conflicting classes: %v", m.state()))
	}
}

func (m *Monitor) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(m.lane, func(o Occupant) bool { return o.ID == id })
}

func (m *Monitor) state() State {
	return State{
		Active:    m.active,
		Waiting:   m.waiting,
		Calls:     m.calls,
		Occupants: slices.Clone(m.lane),
	}
}

func (m *Monitor) emit(o Occupant, p Phase) {
	if m.observer != nil {
		m.observer(Event{Occupant: o, Phase: p, State: m.state()})
	}
}
