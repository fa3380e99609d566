package population

import (
	"sync"
	"time"

	"bridge/monitor"
)

// Report summarises a run. Durations and counts are indexed by class.
type Report struct {
	Completed   monitor.Counts
	Abandoned   monitor.Counts
	MeanWait    [monitor.NumClasses]time.Duration
	LongestWait [monitor.NumClasses]time.Duration
	// Peak, Shared and Overtaken come from a Recorder and stay zero without
	// one.
	Peak      monitor.Counts
	Shared    int
	Overtaken monitor.Counts
	Elapsed   time.Duration
}

type tally struct {
	mu        sync.Mutex
	completed monitor.Counts
	abandoned monitor.Counts
	waited    [monitor.NumClasses]time.Duration
	longest   [monitor.NumClasses]time.Duration
}

func (t *tally) add(trip Trip, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := trip.Actor.Class
	if err != nil {
		t.abandoned[c]++
		return
	}
	t.completed[c]++
	t.waited[c] += trip.Waited
	t.longest[c] = max(t.longest[c], trip.Waited)
}

func (t *tally) report(elapsed time.Duration) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := &Report{
		Completed:   t.completed,
		Abandoned:   t.abandoned,
		LongestWait: t.longest,
		Elapsed:     elapsed,
	}
	for _, c := range monitor.Classes {
		if n := t.completed[c]; n > 0 {
			r.MeanWait[c] = t.waited[c] / time.Duration(n)
		}
	}
	return r
}
