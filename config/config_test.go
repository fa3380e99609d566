package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bridge/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_valid(t *testing.T) {
	for _, name := range []string{"", "default", "quick"} {
		c, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, c.Validate(), name)
	}
	_, err := Preset("rush-hour")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDefault_matchesExercise(t *testing.T) {
	c := Default()
	assert.Equal(t, 100, c.Population.Get(monitor.North))
	assert.Equal(t, 100, c.Population.Get(monitor.South))
	assert.Equal(t, 10, c.Population.Get(monitor.Pedestrian))
	assert.Equal(t, Duration(5*time.Second), c.Arrival.Get(monitor.Pedestrian))
	assert.Equal(t, Spread{Mean: Duration(30 * time.Second), StdDev: Duration(10 * time.Second)}, c.Crossing.Get(monitor.Pedestrian))
}

func TestParse_overlaysBase(t *testing.T) {
	c, err := Parse(Default(), []byte(`
population:
  north: 3
crossing:
  pedestrian:
    mean: 2s
time_scale: 0.01
seed: 42
`))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Population.North)
	assert.Equal(t, 100, c.Population.South)
	assert.Equal(t, 10, c.Population.Pedestrian)
	assert.Equal(t, Duration(2*time.Second), c.Crossing.Pedestrian.Mean)
	assert.Equal(t, Duration(10*time.Second), c.Crossing.Pedestrian.StdDev)
	assert.Equal(t, 0.01, c.TimeScale)
	assert.Equal(t, uint64(42), c.Seed)
	assert.NoError(t, c.Validate())
}

func TestParse_rejectsUnknownFields(t *testing.T) {
	_, err := Parse(Default(), []byte("population:\n  east: 4\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Parse(Default(), []byte("lanes: 2\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_badDuration(t *testing.T) {
	_, err := Parse(Default(), []byte("arrival:\n  north: soon\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative population", func(c *Config) { c.Population.South = -1 }},
		{"negative arrival", func(c *Config) { c.Arrival.North = Duration(-time.Second) }},
		{"zero crossing mean", func(c *Config) { c.Crossing.Pedestrian.Mean = 0 }},
		{"negative stddev", func(c *Config) { c.Crossing.North.StdDev = Duration(-1) }},
		{"zero time scale", func(c *Config) { c.TimeScale = 0 }},
		{"negative in flight", func(c *Config) { c.MaxInFlight = -2 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Quick()
			tc.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("population: {north: 1, south: 2, pedestrian: 0}\nmax_in_flight: 4\n"), 0o600))

	c, err := Load(Quick(), good)
	require.NoError(t, err)
	assert.Equal(t, PerClass[int]{North: 1, South: 2}, c.Population)
	assert.Equal(t, int64(4), c.MaxInFlight)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("time_scale: -1\n"), 0o600))
	_, err = Load(Quick(), bad)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(Quick(), filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScaleAndSources(t *testing.T) {
	c := Quick()
	c.TimeScale = 0.5
	c.Seed = 1
	assert.Equal(t, 50*time.Millisecond, c.Scale(c.Crossing.North.Mean))

	crossing, arrivals := c.Sources()
	for _, class := range monitor.Classes {
		for range 100 {
			assert.Positive(t, crossing.Duration(class))
			assert.GreaterOrEqual(t, arrivals[class].Next(), time.Duration(0))
		}
	}
}

func TestDuration_marshal(t *testing.T) {
	v, err := Duration(1500 * time.Millisecond).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", v)
}
