// Package population spawns the actors that cross the bridge and reports on
// how the run went.
package population

import (
	"context"
	"errors"
	"sync"
	"time"

	"bridge/monitor"
	"bridge/traffic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Plan is how one class arrives.
type Plan struct {
	// Count is the number of actors, ignored by Stream.
	Count int
	// Arrival spaces consecutive actors, nil means back to back.
	Arrival traffic.Arrival
}

type Generator struct {
	Monitor  *monitor.Monitor
	Crossing traffic.Crossing
	Plans    [monitor.NumClasses]Plan
	// MaxInFlight caps actors alive at once, 0 means no cap.
	MaxInFlight int64
	// Recorder, if set, must be the observer of Monitor; its figures are
	// copied into the report.
	Recorder *Recorder
	Log      zerolog.Logger
}

// Run spawns every planned actor, one spawner per class, and waits until all
// of them have left the bridge. If ctx ends, spawning stops, actors still
// waiting give up, and the context error is returned with the partial report.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	return g.run(ctx, ctx, false)
}

// Stream keeps every class arriving until ctx ends, then waits for the actors
// that already arrived to cross. Ending ctx is the normal way to stop it.
func (g *Generator) Stream(ctx context.Context) (*Report, error) {
	return g.run(ctx, context.WithoutCancel(ctx), true)
}

func (g *Generator) run(ctx, actorCtx context.Context, endless bool) (*Report, error) {
	if g.Monitor == nil || g.Crossing == nil {
		return nil, errors.New("population: generator needs a monitor and a crossing source")
	}

	var slots *semaphore.Weighted
	if g.MaxInFlight > 0 {
		slots = semaphore.NewWeighted(g.MaxInFlight)
	}
	t := &tally{}
	started := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, c := range monitor.Classes {
		plan := g.Plans[c]
		if !endless && plan.Count <= 0 {
			continue
		}
		eg.Go(func() error {
			err := g.spawn(egCtx, actorCtx, c, plan, slots, t, endless)
			if endless && ctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	err := eg.Wait()

	report := t.report(time.Since(started))
	if g.Recorder != nil {
		report.Peak = g.Recorder.Peak()
		report.Shared = g.Recorder.Shared()
		report.Overtaken = g.Recorder.Overtaken()
	}
	g.Log.Info().
		Dur("elapsed", report.Elapsed).
		Int("completed", report.Completed.Total()).
		Int("abandoned", report.Abandoned.Total()).
		Msg("population finished")
	return report, err
}

// spawn starts the actors of one class and waits for them.
func (g *Generator) spawn(ctx, actorCtx context.Context, c monitor.Class, plan Plan, slots *semaphore.Weighted, t *tally, endless bool) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	log := g.Log.With().Str("class", c.String()).Logger()
	log.Debug().Int("count", plan.Count).Bool("endless", endless).Msg("spawner started")

	for seq := 1; endless || seq <= plan.Count; seq++ {
		if slots != nil {
			if err := slots.Acquire(ctx, 1); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		a := NewActor(c, seq)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if slots != nil {
				defer slots.Release(1)
			}
			trip, err := a.Cross(actorCtx, g.Monitor, g.Crossing, g.Log)
			t.add(trip, err)
		}()

		if !endless && seq == plan.Count {
			break
		}
		var gap time.Duration
		if plan.Arrival != nil {
			gap = plan.Arrival.Next()
		}
		if err := sleep(ctx, gap); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
