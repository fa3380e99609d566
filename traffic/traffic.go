// Package traffic supplies the timing the bridge does not decide itself: how
// long an actor stays on the lane and how far apart actors arrive.
package traffic

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"bridge/monitor"
)

// MinCrossing is the floor every crossing draw is clamped to.
const MinCrossing = time.Microsecond

// Crossing returns how long an actor of a class stays on the lane. Results
// are strictly positive.
type Crossing interface {
	Duration(c monitor.Class) time.Duration
}

// Arrival returns the gap before the next actor arrives. Results are never
// negative.
type Arrival interface {
	Next() time.Duration
}

// Rand is a random source safe for concurrent use.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand seeds a PCG source. A zero seed picks a random one.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (x *Rand) Float64() float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.r.Float64()
}

func (x *Rand) NormFloat64() float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.r.NormFloat64()
}

func (x *Rand) ExpFloat64() float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.r.ExpFloat64()
}

// Fixed is a constant duration, usable as both a Crossing and an Arrival.
type Fixed time.Duration

func (f Fixed) Duration(monitor.Class) time.Duration {
	return max(time.Duration(f), MinCrossing)
}

func (f Fixed) Next() time.Duration {
	return max(time.Duration(f), 0)
}

// Uniform draws crossings from [Min, Max].
type Uniform struct {
	Min, Max time.Duration
	Rand     *Rand
}

func (u Uniform) Duration(monitor.Class) time.Duration {
	lo, hi := u.Min, u.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	d := lo + time.Duration(u.Rand.Float64()*float64(hi-lo))
	return max(d, MinCrossing)
}

// Normal draws crossings from a normal distribution clamped below at Floor,
// or at MinCrossing when Floor is unset.
type Normal struct {
	Mean, StdDev time.Duration
	Floor        time.Duration
	Rand         *Rand
}

func (n Normal) Duration(monitor.Class) time.Duration {
	d := n.Mean
	if n.StdDev > 0 {
		d += time.Duration(n.Rand.NormFloat64() * float64(n.StdDev))
	}
	return max(d, n.Floor, MinCrossing)
}

// Exponential draws gaps with the given mean, giving Poisson arrivals.
type Exponential struct {
	Mean time.Duration
	Rand *Rand
}

func (e Exponential) Next() time.Duration {
	if e.Mean <= 0 {
		return 0
	}
	f := e.Rand.ExpFloat64() * float64(e.Mean)
	if f > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f)
}

// PerClass routes each class to its own Crossing.
type PerClass [monitor.NumClasses]Crossing

func (p PerClass) Duration(c monitor.Class) time.Duration {
	return p[c].Duration(c)
}
