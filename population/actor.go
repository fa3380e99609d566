package population

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bridge/monitor"
	"bridge/traffic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Actor is one vehicle or pedestrian.
type Actor struct {
	ID    uuid.UUID
	Seq   int
	Class monitor.Class
}

func NewActor(c monitor.Class, seq int) Actor {
	return Actor{ID: uuid.New(), Seq: seq, Class: c}
}

func (a Actor) String() string {
	return fmt.Sprintf("%s#%d", strings.ToLower(a.Class.String()), a.Seq)
}

func (a Actor) Occupant() monitor.Occupant {
	return monitor.Occupant{ID: a.ID, Class: a.Class, Label: a.String()}
}

// Trip is what happened to an actor.
type Trip struct {
	Actor   Actor
	Waited  time.Duration
	Crossed time.Duration
}

// Cross takes a over the bridge: wait for the lane, stay on it for a crossing
// drawn from crossing, then leave. Only the wait honours ctx; once on the lane
// the actor always finishes and leaves.
func (a Actor) Cross(ctx context.Context, m *monitor.Monitor, crossing traffic.Crossing, log zerolog.Logger) (Trip, error) {
	log = log.With().
		Str("class", a.Class.String()).
		Int("actor", a.Seq).
		Str("id", a.ID.String()).
		Logger()
	trip := Trip{Actor: a}
	o := a.Occupant()

	log.Info().Stringer("monitor", m).Msg("wants to enter")
	arrived := time.Now()
	if err := m.EnterContext(ctx, o); err != nil {
		trip.Waited = time.Since(arrived)
		log.Warn().Err(err).Dur("waited", trip.Waited).Msg("gave up waiting")
		return trip, fmt.Errorf("%v: %w", a, err)
	}
	trip.Waited = time.Since(arrived)
	log.Info().Dur("waited", trip.Waited).Stringer("monitor", m).Msg("enters the bridge")

	trip.Crossed = crossing.Duration(a.Class)
	time.Sleep(trip.Crossed)

	log.Info().Dur("crossed", trip.Crossed).Stringer("monitor", m).Msg("leaving the bridge")
	m.Exit(o)
	log.Debug().Stringer("monitor", m).Msg("out of the bridge")
	return trip, nil
}
