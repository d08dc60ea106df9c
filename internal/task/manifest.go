package task

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Spec declares one worker in a manifest.
type Spec struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Interval string `yaml:"interval"`
}

// Manifest declares the workers to run, loaded from YAML:
//
//	tasks:
//	  - name: fast
//	    kind: percent
//	    interval: 500ms
//	  - name: slow
//	    kind: temperature
//	    interval: 2s
type Manifest struct {
	Tasks []Spec `yaml:"tasks"`
}

// LoadManifest reads a worker manifest. Unlike the config file, a
// manifest is always named explicitly, so a missing one is an error.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// Workers instantiates the declared workers.
func (m Manifest) Workers() ([]Worker, error) {
	workers := make([]Worker, 0, len(m.Tasks))
	for i, spec := range m.Tasks {
		w, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func (s Spec) build() (Worker, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	interval, err := time.ParseDuration(s.Interval)
	if err != nil {
		return nil, fmt.Errorf("task %s interval: %w", s.Name, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("task %s interval %v: must be positive", s.Name, interval)
	}

	switch s.Kind {
	case "percent":
		return NewPercentWorker(s.Name, interval), nil
	case "temperature":
		return NewTemperatureWorker(s.Name, interval), nil
	default:
		return nil, fmt.Errorf("task %s: unknown kind %q", s.Name, s.Kind)
	}
}

// BuiltinWorkers returns the stock demo pair: a fast percent counter
// and a slow temperature reading.
func BuiltinWorkers() []Worker {
	return []Worker{
		NewPercentWorker("fast", 500*time.Millisecond),
		NewTemperatureWorker("slow", 2*time.Second),
	}
}
