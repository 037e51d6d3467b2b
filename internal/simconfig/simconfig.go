// Package simconfig loads the YAML scenario configuration consumed by
// cmd/kalmansub, following the teacher's cmd/warren apply.go pattern
// of unmarshaling a resource file with gopkg.in/yaml.v3 and validating
// it before use.
package simconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulation run: a realization source sampling
// a deterministic process, a Kalman filter tracking it, and the
// reactor horizon to run until.
type Scenario struct {
	Name string `yaml:"name"`

	Process struct {
		// Kind selects the tracer: "constant" or "linear".
		Kind      string  `yaml:"kind"`
		Value0    float64 `yaml:"value0"`
		SlopePerS float64 `yaml:"slopePerS,omitempty"`
	} `yaml:"process"`

	// SampleIntervalSeconds is the realization source's fixed Δt.
	SampleIntervalSeconds float64 `yaml:"sampleIntervalSeconds"`

	// HorizonSeconds bounds the reactor's run_until call.
	HorizonSeconds float64 `yaml:"horizonSeconds"`

	Filter struct {
		ProcessNoise     float64 `yaml:"processNoise"`
		ObservationNoise float64 `yaml:"observationNoise"`
		InitialVariance  float64 `yaml:"initialVariance"`
	} `yaml:"filter"`
}

// Load reads and parses a Scenario from a YAML file, failing fast on
// structurally invalid input rather than deferring to a zero-value
// scenario silently.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simconfig: read %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("simconfig: parse %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("simconfig: %s: %w", path, err)
	}

	return &sc, nil
}

// Validate checks the structural invariants a Scenario must satisfy
// before it can drive a simulation run.
func (sc *Scenario) Validate() error {
	switch sc.Process.Kind {
	case "constant", "linear":
	default:
		return fmt.Errorf("process.kind must be \"constant\" or \"linear\", got %q", sc.Process.Kind)
	}
	if sc.SampleIntervalSeconds <= 0 {
		return fmt.Errorf("sampleIntervalSeconds must be > 0, got %g", sc.SampleIntervalSeconds)
	}
	if sc.HorizonSeconds <= 0 {
		return fmt.Errorf("horizonSeconds must be > 0, got %g", sc.HorizonSeconds)
	}
	if sc.Filter.ObservationNoise <= 0 {
		return fmt.Errorf("filter.observationNoise must be > 0, got %g", sc.Filter.ObservationNoise)
	}
	if sc.Filter.InitialVariance <= 0 {
		return fmt.Errorf("filter.initialVariance must be > 0, got %g", sc.Filter.InitialVariance)
	}
	return nil
}
