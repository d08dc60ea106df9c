package task

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tidwall/sjson"
)

// Worker produces one status payload per tick. Implementations run a
// private goroutine under the Runner and must not touch the terminal.
type Worker interface {
	// Name identifies the worker on the monitor bridge.
	Name() string

	// Interval is the time between ticks.
	Interval() time.Duration

	// Step advances the worker's state and returns its status payload
	// as a small JSON document.
	Step(tick int) ([]byte, error)
}

// PercentWorker walks a floating-point value between -1.0 and 1.0 in
// 0.1 steps, reversing at the bounds.
type PercentWorker struct {
	name     string
	interval time.Duration
	steps    int
	delta    int
}

// NewPercentWorker returns a percent worker ticking at interval.
func NewPercentWorker(name string, interval time.Duration) *PercentWorker {
	return &PercentWorker{name: name, interval: interval, delta: 1}
}

func (w *PercentWorker) Name() string            { return w.name }
func (w *PercentWorker) Interval() time.Duration { return w.interval }

// Step drifts the value and reports {"pct":..,"tick":..}.
func (w *PercentWorker) Step(tick int) ([]byte, error) {
	w.steps += w.delta
	if w.steps >= 10 || w.steps <= -10 {
		w.delta = -w.delta
	}

	payload, err := sjson.SetBytes([]byte(`{}`), "pct", round2(float64(w.steps)/10))
	if err != nil {
		return nil, fmt.Errorf("encoding %s status: %w", w.name, err)
	}
	payload, err = sjson.SetBytes(payload, "tick", tick)
	if err != nil {
		return nil, fmt.Errorf("encoding %s status: %w", w.name, err)
	}
	return payload, nil
}

// demoStates are the labels the temperature worker cycles through.
var demoStates = [...]string{"Disconnected", "Idle", "Cycling", "Faulted"}

// stateHold is how many ticks a state label lasts.
const stateHold = 5

// TemperatureWorker drifts an integer temperature between 10 and 30
// and rotates through state labels every few ticks.
type TemperatureWorker struct {
	name     string
	interval time.Duration
	log      *slog.Logger

	temp  int
	delta int
	state int
	hold  int
}

// NewTemperatureWorker returns a temperature worker ticking at interval.
func NewTemperatureWorker(name string, interval time.Duration) *TemperatureWorker {
	return &TemperatureWorker{
		name:     name,
		interval: interval,
		temp:     20,
		delta:    1,
		hold:     stateHold,
	}
}

// SetLogger routes state-transition records to log.
func (w *TemperatureWorker) SetLogger(log *slog.Logger) { w.log = log }

func (w *TemperatureWorker) logger() *slog.Logger {
	if w.log != nil {
		return w.log
	}
	return slog.Default()
}

func (w *TemperatureWorker) Name() string            { return w.name }
func (w *TemperatureWorker) Interval() time.Duration { return w.interval }

// Step drifts the reading and reports {"temp":..,"state":..,"tick":..}.
func (w *TemperatureWorker) Step(tick int) ([]byte, error) {
	w.temp += w.delta
	if w.temp >= 30 || w.temp <= 10 {
		w.delta = -w.delta
	}

	w.hold--
	if w.hold <= 0 {
		w.hold = stateHold
		prev := demoStates[w.state]
		w.state = (w.state + 1) % len(demoStates)
		w.logger().Info("state change",
			"task", w.name, "from", prev, "to", demoStates[w.state])
	}

	payload := []byte(`{}`)
	var err error
	for _, set := range []struct {
		path  string
		value any
	}{
		{"temp", w.temp},
		{"state", demoStates[w.state]},
		{"tick", tick},
	} {
		payload, err = sjson.SetBytes(payload, set.path, set.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s status: %w", w.name, err)
		}
	}
	return payload, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
