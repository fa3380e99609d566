package main

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"bridge/monitor"
	"bridge/population"
	"bridge/traffic"

	"github.com/rs/zerolog"
)

// step is one scripted arrival.
type step struct {
	phase string
	after time.Duration // since the previous step
	actor population.Actor
	cross time.Duration
}

// runScenario plays a North stream holding the lane, a South car queueing
// behind it, and a late North car that must let the South car go first.
func runScenario(ctx context.Context, log zerolog.Logger, scale float64) error {
	ms := func(n int) time.Duration {
		return time.Duration(float64(n) * float64(time.Millisecond) * scale)
	}
	steps := []step{
		{"--- PHASE 1: North stream starts ---", 0, population.NewActor(monitor.North, 1), ms(200)},
		{"", ms(10), population.NewActor(monitor.North, 2), ms(200)},
		{"--- PHASE 2: South arrives (should queue) ---", ms(40), population.NewActor(monitor.South, 3), ms(100)},
		{"--- PHASE 3: late North arrives (should wait for South) ---", ms(50), population.NewActor(monitor.North, 4), ms(100)},
	}

	var (
		mu      sync.Mutex
		entered []string
	)
	m := monitor.New(monitor.WithObserver(func(e monitor.Event) {
		if e.Phase == monitor.OnLane {
			mu.Lock()
			entered = append(entered, e.Occupant.Label)
			mu.Unlock()
		}
	}))

	start := time.Now()
	stamp := func(msg string) {
		log.Info().Int64("ms", time.Since(start).Milliseconds()).Msg(msg)
	}

	var wg sync.WaitGroup
	for _, s := range steps {
		timer := time.NewTimer(s.after)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		if s.phase != "" {
			stamp(s.phase)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			stamp(s.actor.String() + " arrives")
			if _, err := s.actor.Cross(context.Background(), m, traffic.Fixed(s.cross), log); err == nil {
				stamp(s.actor.String() + " finished")
			}
		}()
	}
	wg.Wait()
	stamp("--- Simulation complete ---")

	mu.Lock()
	defer mu.Unlock()
	south, late := slices.Index(entered, "south#3"), slices.Index(entered, "north#4")
	if south < 0 || late < 0 || late < south {
		return fmt.Errorf("late north overtook the queued south car: entry order %v", entered)
	}
	log.Info().Strs("order", entered).Msg("fairness held")
	return nil
}
