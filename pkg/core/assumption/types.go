// Package assumption holds named projection scenarios for a client.
// A scenario bundles the projection drivers with the totals selection, so a
// saved "what if" can be re-run without the caller restating either.
package assumption

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"wealth_planner/pkg/core/calc"
	"wealth_planner/pkg/core/projection"
)

// BaseScenario is always present and cannot be deleted.
const BaseScenario = "base"

// =============================================================================
// SCENARIO
// =============================================================================

// Scenario is one set of projection drivers plus totals selection.
type Scenario struct {
	Name        string                 `json:"name" yaml:"name"`
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Assumptions projection.Assumptions `json:"assumptions" yaml:"assumptions"`

	// Highlight and Adjustment feed the totals aggregator.
	Highlight  map[string]bool `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Adjustment float64         `json:"adjustment,omitempty" yaml:"adjustment,omitempty"`

	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// AggregateParams converts the scenario's selection into aggregator input.
func (s *Scenario) AggregateParams() *calc.AggregateParams {
	a := s.Assumptions.Sanitized()
	return &calc.AggregateParams{
		Highlight:            s.Highlight,
		Years:                a.Years,
		InflationRatePercent: a.InflationRatePercent,
		Adjustment:           s.Adjustment,
	}
}

// =============================================================================
// SCENARIO SET
// =============================================================================

// ScenarioSet holds every scenario for one client.
type ScenarioSet struct {
	ClientID  string               `json:"clientId" yaml:"client_id"`
	Scenarios map[string]*Scenario `json:"scenarios" yaml:"scenarios"`

	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// NewScenarioSet creates a set seeded with a base scenario.
func NewScenarioSet(clientID string, base projection.Assumptions) *ScenarioSet {
	now := time.Now()
	return &ScenarioSet{
		ClientID: clientID,
		Scenarios: map[string]*Scenario{
			BaseScenario: {Name: BaseScenario, Label: "Base case", Assumptions: base, UpdatedAt: now},
		},
		UpdatedAt: now,
	}
}

// AddScenario adds a new scenario
func (ss *ScenarioSet) AddScenario(s *Scenario) error {
	if s == nil || strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	if _, exists := ss.Scenarios[s.Name]; exists {
		return fmt.Errorf("scenario '%s' already exists", s.Name)
	}
	if ss.Scenarios == nil {
		ss.Scenarios = make(map[string]*Scenario)
	}

	s.UpdatedAt = time.Now()
	ss.Scenarios[s.Name] = s
	ss.UpdatedAt = s.UpdatedAt
	return nil
}

// GetScenario retrieves a scenario by name
func (ss *ScenarioSet) GetScenario(name string) (*Scenario, error) {
	s, ok := ss.Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("scenario '%s' not found", name)
	}
	return s, nil
}

// UpdateScenario replaces an existing scenario
func (ss *ScenarioSet) UpdateScenario(s *Scenario) error {
	if s == nil {
		return fmt.Errorf("scenario cannot be nil")
	}
	if _, exists := ss.Scenarios[s.Name]; !exists {
		return fmt.Errorf("scenario '%s' not found", s.Name)
	}

	s.UpdatedAt = time.Now()
	ss.Scenarios[s.Name] = s
	ss.UpdatedAt = s.UpdatedAt
	return nil
}

// DeleteScenario removes a scenario. The base scenario is protected.
func (ss *ScenarioSet) DeleteScenario(name string) error {
	if name == BaseScenario {
		return fmt.Errorf("cannot delete base scenario")
	}
	if _, exists := ss.Scenarios[name]; !exists {
		return fmt.Errorf("scenario '%s' not found", name)
	}

	delete(ss.Scenarios, name)
	ss.UpdatedAt = time.Now()
	return nil
}

// Names returns scenario names with base first, the rest sorted.
func (ss *ScenarioSet) Names() []string {
	names := make([]string, 0, len(ss.Scenarios))
	for name := range ss.Scenarios {
		if name != BaseScenario {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := ss.Scenarios[BaseScenario]; ok {
		names = append([]string{BaseScenario}, names...)
	}
	return names
}

// ToJSON serializes the set
func (ss *ScenarioSet) ToJSON() ([]byte, error) {
	return json.Marshal(ss)
}

// FromJSON deserializes a set, restoring an empty base scenario if it is
// missing.
func FromJSON(data []byte) (*ScenarioSet, error) {
	return FromJSONWithBase(data, projection.Assumptions{})
}

// FromJSONWithBase is FromJSON with the assumptions a restored base
// scenario should carry.
func FromJSONWithBase(data []byte, base projection.Assumptions) (*ScenarioSet, error) {
	var ss ScenarioSet
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("failed to decode scenarios: %w", err)
	}
	ss.ensureBase(base)
	return &ss, nil
}

func (ss *ScenarioSet) ensureBase(base projection.Assumptions) {
	if ss.Scenarios == nil {
		ss.Scenarios = make(map[string]*Scenario)
	}
	for name, s := range ss.Scenarios {
		if s == nil {
			delete(ss.Scenarios, name)
			continue
		}
		s.Name = name
	}
	if _, ok := ss.Scenarios[BaseScenario]; !ok {
		ss.Scenarios[BaseScenario] = &Scenario{Name: BaseScenario, Label: "Base case", Assumptions: base}
	}
}

// =============================================================================
// FILE LOADING
// =============================================================================

// LoadFile reads a single scenario from disk. YAML is chosen by extension;
// anything else is read as HJSON, which also accepts strict JSON.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assumptions file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a scenario document. ext selects the format (".yaml",
// ".yml", otherwise HJSON/JSON).
func Parse(data []byte, ext string) (*Scenario, error) {
	var s Scenario
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse yaml assumptions: %w", err)
		}
	default:
		// hjson decodes into generic values; round-trip through JSON so the
		// struct tags apply.
		var generic any
		if err := hjson.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse assumptions: %w", err)
		}
		buf, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode assumptions: %w", err)
		}
		if err := json.Unmarshal(buf, &s); err != nil {
			return nil, fmt.Errorf("failed to decode assumptions: %w", err)
		}
	}
	if s.Name == "" {
		s.Name = BaseScenario
	}
	return &s, nil
}
