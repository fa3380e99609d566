package population

import (
	"sync"

	"bridge/monitor"

	"github.com/google/uuid"
)

// Recorder watches a monitor through its observer hook. Register it with
// monitor.WithObserver(r.Observe).
type Recorder struct {
	mu        sync.Mutex
	peak      monitor.Counts
	shared    int
	overtaken monitor.Counts
	// queued identified actors not yet on the lane, with rival entries seen
	pending map[uuid.UUID]*pending
}

type pending struct {
	class monitor.Class
	seen  int
}

func NewRecorder() *Recorder {
	return &Recorder{pending: make(map[uuid.UUID]*pending)}
}

func (r *Recorder) Observe(e monitor.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range monitor.Classes {
		r.peak[c] = max(r.peak[c], e.State.Active[c])
	}
	if !e.State.Exclusive() {
		r.shared++
	}

	id, class := e.Occupant.ID, e.Occupant.Class
	switch e.Phase {
	case monitor.Queued:
		if id != uuid.Nil {
			r.pending[id] = &pending{class: class}
		}
	case monitor.OnLane:
		for _, p := range r.pending {
			if p.class != class {
				p.seen++
			}
		}
		r.settle(id)
	case monitor.Cancelled:
		r.settle(id)
	}
}

func (r *Recorder) settle(id uuid.UUID) {
	p, ok := r.pending[id]
	if !ok {
		return
	}
	delete(r.pending, id)
	r.overtaken[p.class] = max(r.overtaken[p.class], p.seen)
}

// Peak returns the most actors of each class seen on the lane at once.
func (r *Recorder) Peak() monitor.Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

// Shared returns how many observed states had two classes on the lane.
func (r *Recorder) Shared() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shared
}

// Overtaken returns, per class, the most rival entries any one queued actor
// of that class had to let through before getting on the lane.
func (r *Recorder) Overtaken() monitor.Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overtaken
}
