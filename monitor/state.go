package monitor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Phase is where an actor is in its crossing.
type Phase int

const (
	Arrived Phase = iota
	QueueWait
	Queued
	EntryWait
	OnLane
	Departed
	// Cancelled ends an entry whose context finished before the actor got
	// on the lane.
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Arrived:
		return "ARRIVED"
	case QueueWait:
		return "QUEUE_WAIT"
	case Queued:
		return "QUEUED"
	case EntryWait:
		return "ENTRY_WAIT"
	case OnLane:
		return "ON_LANE"
	case Departed:
		return "DEPARTED"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Occupant identifies an actor to the monitor. The zero ID makes the occupant
// anonymous: it is counted but not listed.
type Occupant struct {
	ID    uuid.UUID
	Class Class
	Label string
}

func (o Occupant) String() string {
	if o.Label != "" {
		return o.Label
	}
	if o.ID == uuid.Nil {
		return o.Class.String()
	}
	return o.Class.String() + "-" + o.ID.String()[:8]
}

// Counts is indexed by Class.
type Counts [NumClasses]int

func (c Counts) Total() (n int) {
	for _, v := range c {
		n += v
	}
	return
}

// State is a copy of the monitor's shared state.
type State struct {
	Active  Counts
	Waiting Counts
	// Calls is the number of entry and exit operations started so far.
	Calls uint64
	// Occupants lists identified actors on the lane in order of entry.
	Occupants []Occupant
}

// Exclusive reports whether at most one class occupies the lane.
func (s State) Exclusive() bool {
	busy := 0
	for _, n := range s.Active {
		if n > 0 {
			busy++
		}
	}
	return busy <= 1
}

// Holder returns the class on the lane, if any.
func (s State) Holder() (Class, bool) {
	for _, c := range Classes {
		if s.Active[c] > 0 {
			return c, true
		}
	}
	return 0, false
}

func (s State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. Monitor: [", s.Calls)
	for i, o := range s.Occupants {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.String())
	}
	b.WriteString("]")
	for _, c := range Classes {
		fmt.Fprintf(&b, " %s=%d/%d", c, s.Active[c], s.Waiting[c])
	}
	return b.String()
}

// Event reports one phase transition of one actor, together with the state
// right after it.
type Event struct {
	Occupant Occupant
	Phase    Phase
	State    State
}

// Observer receives every Event. It runs with the monitor lock held and must
// not call back into the monitor.
type Observer func(Event)
