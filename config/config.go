// Package config holds the population and timing parameters of a bridge run.
//
// The zero-argument presets reproduce the two parameter sets the exercise
// ships with; a YAML file overlays either of them, rejecting unknown fields.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"bridge/monitor"
	"bridge/traffic"

	"gopkg.in/yaml.v2"
)

var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// PerClass holds one value per traffic class.
type PerClass[T any] struct {
	North      T `yaml:"north"`
	South      T `yaml:"south"`
	Pedestrian T `yaml:"pedestrian"`
}

func (p PerClass[T]) Get(c monitor.Class) T {
	switch c {
	case monitor.North:
		return p.North
	case monitor.South:
		return p.South
	default:
		return p.Pedestrian
	}
}

// Spread describes a crossing time as mean and standard deviation.
type Spread struct {
	Mean   Duration `yaml:"mean"`
	StdDev Duration `yaml:"stddev"`
}

type Config struct {
	// Population is how many actors of each class arrive in total.
	Population PerClass[int] `yaml:"population"`
	// Arrival is the mean gap between two arrivals of a class.
	Arrival  PerClass[Duration] `yaml:"arrival"`
	Crossing PerClass[Spread]   `yaml:"crossing"`
	// TimeScale multiplies every duration above.
	TimeScale float64 `yaml:"time_scale"`
	// MaxInFlight caps actors alive at once, 0 means no cap.
	MaxInFlight int64 `yaml:"max_in_flight"`
	// Seed for the random sources, 0 picks one at random.
	Seed uint64 `yaml:"seed"`
}

// Default is the full exercise: a hundred cars each way and ten pedestrians
// who take much longer to cross.
func Default() Config {
	return Config{
		Population: PerClass[int]{North: 100, South: 100, Pedestrian: 10},
		Arrival: PerClass[Duration]{
			North:      Duration(500 * time.Millisecond),
			South:      Duration(500 * time.Millisecond),
			Pedestrian: Duration(5 * time.Second),
		},
		Crossing: PerClass[Spread]{
			North:      Spread{Mean: Duration(time.Second), StdDev: Duration(500 * time.Millisecond)},
			South:      Spread{Mean: Duration(time.Second), StdDev: Duration(500 * time.Millisecond)},
			Pedestrian: Spread{Mean: Duration(30 * time.Second), StdDev: Duration(10 * time.Second)},
		},
		TimeScale: 1,
	}
}

// Quick is a small population that finishes in a few seconds.
func Quick() Config {
	return Config{
		Population: PerClass[int]{North: 20, South: 20, Pedestrian: 5},
		Arrival: PerClass[Duration]{
			North:      Duration(50 * time.Millisecond),
			South:      Duration(50 * time.Millisecond),
			Pedestrian: Duration(250 * time.Millisecond),
		},
		Crossing: PerClass[Spread]{
			North:      Spread{Mean: Duration(100 * time.Millisecond), StdDev: Duration(50 * time.Millisecond)},
			South:      Spread{Mean: Duration(100 * time.Millisecond), StdDev: Duration(50 * time.Millisecond)},
			Pedestrian: Spread{Mean: Duration(300 * time.Millisecond), StdDev: Duration(100 * time.Millisecond)},
		},
		TimeScale: 1,
	}
}

// Preset returns the named preset.
func Preset(name string) (Config, error) {
	switch name {
	case "", "default":
		return Default(), nil
	case "quick":
		return Quick(), nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalid, name)
}

// Parse overlays YAML data on base.
func Parse(base Config, data []byte) (Config, error) {
	c := base
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return c, nil
}

// Load overlays the YAML file at path on base and validates the result.
func Load(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	c, err := Parse(base, data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	for _, class := range monitor.Classes {
		if n := c.Population.Get(class); n < 0 {
			errs = append(errs, fmt.Errorf("%w: population.%s is negative", ErrInvalid, class))
		}
		if c.Arrival.Get(class) < 0 {
			errs = append(errs, fmt.Errorf("%w: arrival.%s is negative", ErrInvalid, class))
		}
		s := c.Crossing.Get(class)
		if s.Mean <= 0 {
			errs = append(errs, fmt.Errorf("%w: crossing.%s.mean must be positive", ErrInvalid, class))
		}
		if s.StdDev < 0 {
			errs = append(errs, fmt.Errorf("%w: crossing.%s.stddev is negative", ErrInvalid, class))
		}
	}
	if c.TimeScale <= 0 {
		errs = append(errs, fmt.Errorf("%w: time_scale must be positive", ErrInvalid))
	}
	if c.MaxInFlight < 0 {
		errs = append(errs, fmt.Errorf("%w: max_in_flight is negative", ErrInvalid))
	}
	return errors.Join(errs...)
}

// Scale applies TimeScale to d.
func (c Config) Scale(d Duration) time.Duration {
	return time.Duration(float64(d) * c.TimeScale)
}

// Sources builds the crossing and arrival sources, sharing one random stream.
func (c Config) Sources() (traffic.PerClass, [monitor.NumClasses]traffic.Arrival) {
	rng := traffic.NewRand(c.Seed)
	var (
		crossing traffic.PerClass
		arrivals [monitor.NumClasses]traffic.Arrival
	)
	for _, class := range monitor.Classes {
		s := c.Crossing.Get(class)
		crossing[class] = traffic.Normal{
			Mean:   c.Scale(s.Mean),
			StdDev: c.Scale(s.StdDev),
			Rand:   rng,
		}
		arrivals[class] = traffic.Exponential{Mean: c.Scale(c.Arrival.Get(class)), Rand: rng}
	}
	return crossing, arrivals
}
