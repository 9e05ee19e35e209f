package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fsmcheck/internal/contract"
	"github.com/roach88/fsmcheck/internal/model"
)

// Scenario is one replayable message sequence with its expected verdict.
type Scenario struct {
	// Name uniquely identifies this scenario within a directory.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the catalog name of the machine to replay against.
	Model string `yaml:"model"`

	// Messages are applied in order to a fresh machine.
	Messages []model.MessageSpec `yaml:"messages"`

	// Expect is the verdict the run must produce.
	Expect Expect `yaml:"expect"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Expect describes the expected verdict of a run.
type Expect struct {
	Outcome    string         `yaml:"outcome"`
	Kind       string         `yaml:"kind,omitempty"`
	Label      string         `yaml:"label,omitempty"`
	Step       int            `yaml:"step,omitempty"`
	FinalState string         `yaml:"final_state,omitempty"`
	Context    map[string]any `yaml:"context,omitempty"`
	Outputs    []string       `yaml:"outputs,omitempty"`
}

// Outcome values.
const (
	OutcomeOK        = "ok"
	OutcomeViolation = "violation"
	OutcomeFailure   = "failure"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "message:" vs "messages:".
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
// Scenario names must be unique across the directory.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("failed to read scenario directory: %w", err)
		}
	}

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Filter returns the scenarios whose name matches the glob pattern.
// An empty pattern matches everything.
func Filter(scenarios []*Scenario, pattern string) ([]*Scenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}

	var out []*Scenario
	for _, s := range scenarios {
		if ok, _ := filepath.Match(pattern, s.Name); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Model == "" {
		return fmt.Errorf("model is required")
	}

	if len(s.Messages) == 0 {
		return fmt.Errorf("messages list is required and must be non-empty")
	}

	for i, msg := range s.Messages {
		if msg.Kind == "" {
			return fmt.Errorf("messages[%d]: kind is required", i)
		}
	}

	return validateExpect(&s.Expect, len(s.Messages))
}

func validateExpect(e *Expect, messages int) error {
	switch e.Outcome {
	case "":
		return fmt.Errorf("expect.outcome is required")
	case OutcomeOK, OutcomeViolation, OutcomeFailure:
	default:
		return fmt.Errorf("expect.outcome: unknown outcome %q", e.Outcome)
	}

	if e.Outcome != OutcomeViolation {
		if e.Kind != "" {
			return fmt.Errorf("expect.kind requires outcome %q", OutcomeViolation)
		}
		if e.Label != "" {
			return fmt.Errorf("expect.label requires outcome %q", OutcomeViolation)
		}
	}

	switch contract.Kind(e.Kind) {
	case "", contract.KindPrecondition, contract.KindPostcondition, contract.KindInvariant, contract.KindTransition:
	default:
		return fmt.Errorf("expect.kind: unknown kind %q", e.Kind)
	}

	if e.Step < 0 || e.Step > messages {
		return fmt.Errorf("expect.step: %d is outside 1..%d", e.Step, messages)
	}
	if e.Step > 0 && e.Outcome == OutcomeOK {
		return fmt.Errorf("expect.step requires a failing outcome")
	}

	return nil
}
