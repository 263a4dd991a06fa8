// Package config loads adequacy study definitions from YAML: which saved
// system to analyze, the simulation window and trial count, the metrics to
// report, and optionally an ELCC candidate.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"resource_adequacy/internal/adequacy"
	"resource_adequacy/internal/simulator"
)

// Study is the on-disk study shape (YAML).
type Study struct {
	// SystemDir is a directory written by store.Save.
	SystemDir string `yaml:"system_dir"`

	Window  Window   `yaml:"window"`
	Trials  int      `yaml:"trials"`
	Seed    uint64   `yaml:"seed"`
	Workers int      `yaml:"workers"`
	Metrics []string `yaml:"metrics"`

	ELCC *ELCC `yaml:"elcc"`
}

// Window bounds the study horizon with RFC3339 timestamps, half-open.
type Window struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ELCC configures an optional capacity-credit evaluation.
type ELCC struct {
	// CandidateDir is the additional system, also written by store.Save.
	CandidateDir  string  `yaml:"candidate_dir"`
	Metric        string  `yaml:"metric"`
	PrecisionMW   float64 `yaml:"precision_mw"`
	MaxIterations int     `yaml:"max_iterations"`
}

// Load reads and validates a study file.
func Load(path string) (*Study, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Study
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("study config invalid: %w", err)
	}
	return &s, nil
}

func (s *Study) Validate() error {
	if s == nil {
		return errors.New("study is nil")
	}
	if s.SystemDir == "" {
		return errors.New("system_dir is required")
	}
	start, end, err := s.WindowBounds()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("window.start %s must be before window.end %s", s.Window.Start, s.Window.End)
	}
	if s.Trials < 0 {
		return errors.New("trials must be non-negative")
	}
	if len(s.Metrics) == 0 && s.ELCC == nil {
		return errors.New("at least one metric or an elcc section is required")
	}
	if _, err := s.MetricKinds(); err != nil {
		return err
	}
	if s.ELCC != nil {
		if s.ELCC.CandidateDir == "" {
			return errors.New("elcc.candidate_dir is required")
		}
		if _, err := adequacy.ParseMetric(s.ELCC.Metric); err != nil {
			return fmt.Errorf("elcc.metric: %w", err)
		}
		if s.ELCC.PrecisionMW < 0 {
			return errors.New("elcc.precision_mw must be non-negative")
		}
		if s.ELCC.MaxIterations < 0 {
			return errors.New("elcc.max_iterations must be non-negative")
		}
	}
	return nil
}

// WindowBounds parses the study horizon.
func (s *Study) WindowBounds() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, s.Window.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window.start: %w", err)
	}
	end, err = time.Parse(time.RFC3339, s.Window.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window.end: %w", err)
	}
	return start, end, nil
}

// MetricKinds maps the configured metric names.
func (s *Study) MetricKinds() ([]adequacy.Metric, error) {
	kinds := make([]adequacy.Metric, 0, len(s.Metrics))
	for _, name := range s.Metrics {
		m, err := adequacy.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, m)
	}
	return kinds, nil
}

// Simulation builds an unassigned simulation from the study settings.
func (s *Study) Simulation() (*simulator.Simulation, error) {
	start, end, err := s.WindowBounds()
	if err != nil {
		return nil, err
	}
	opts := []simulator.Option{simulator.WithSeed(s.Seed)}
	if s.Workers > 0 {
		opts = append(opts, simulator.WithWorkers(s.Workers))
	}
	return simulator.New(start, end, s.Trials, opts...), nil
}
