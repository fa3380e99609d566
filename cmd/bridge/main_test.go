package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"bridge/config"
	"bridge/monitor"
	"bridge/population"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenario(t *testing.T) {
	require.NoError(t, runScenario(context.Background(), zerolog.Nop(), 0.2))
}

func TestRunScenario_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, runScenario(ctx, zerolog.Nop(), 1), context.Canceled)
}

func TestRunPopulation_quick(t *testing.T) {
	cfg := config.Quick()
	cfg.TimeScale = 0.05
	cfg.Seed = 5

	report, err := runPopulation(context.Background(), zerolog.Nop(), cfg, false, 0)
	require.NoError(t, err)
	assert.Equal(t, monitor.Counts{20, 20, 5}, report.Completed)
	assert.Zero(t, report.Shared)
}

func TestRunPopulation_stream(t *testing.T) {
	cfg := config.Quick()
	cfg.TimeScale = 0.05

	report, err := runPopulation(context.Background(), zerolog.Nop(), cfg, true, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Positive(t, report.Completed.Total())
	assert.Equal(t, monitor.Counts{}, report.Abandoned)
}

func TestPrintSummary(t *testing.T) {
	defer func(v bool) { color.NoColor = v }(color.NoColor)
	color.NoColor = true

	var buf bytes.Buffer
	printSummary(&buf, &population.Report{
		Completed:   monitor.Counts{3, 2, 1},
		Peak:        monitor.Counts{2, 1, 1},
		LongestWait: [monitor.NumClasses]time.Duration{time.Second},
		Elapsed:     1500 * time.Millisecond,
	})
	out := buf.String()
	assert.Contains(t, out, "Pedestrian")
	assert.Contains(t, out, "lane never shared between classes")
	assert.Contains(t, out, "elapsed 1.5s")

	buf.Reset()
	printSummary(&buf, &population.Report{Shared: 2})
	assert.Contains(t, buf.String(), "lane shared by two classes in 2 observed states")
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger("warn", true)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestStartProfile_unknownKind(t *testing.T) {
	_, err := startProfile("heap-of-cars")
	assert.Error(t, err)
}
