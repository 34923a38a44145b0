package maintenance

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the manufacturer maintenance intervals for one robot family, in servo hours.
type Policy struct {
	PeriodicMaintenance int  `json:"periodic_maintenance" yaml:"periodic_maintenance"`
	Overhaul            int  `json:"overhaul" yaml:"overhaul"`
	InternalCable       *int `json:"internal_cable,omitempty" yaml:"internal_cable,omitempty"`
}

// HasInternalCable reports whether the policy carries a robot specific cable interval.
func (p Policy) HasInternalCable() bool {
	return p.InternalCable != nil && *p.InternalCable > 0
}

// ModelInterval binds a model family prefix to its policy.
type ModelInterval struct {
	Family string `yaml:"family"`
	Policy `yaml:",inline"`
}

// DefaultPolicy applies to models that match no table entry.
var DefaultPolicy = Policy{
	PeriodicMaintenance: 6000,
	Overhaul:            36000,
}

func hours(h int) *int { return &h }

// DefaultIntervalTable is the built-in manufacturer table. Families are matched
// as prefixes of the normalised model name; the longest family wins.
var DefaultIntervalTable = []ModelInterval{
	// handling
	{Family: "GP", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 36000, InternalCable: hours(24000)}},
	{Family: "GP180", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000, InternalCable: hours(20000)}},
	{Family: "GP225", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000, InternalCable: hours(20000)}},
	{Family: "MH", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000}},
	{Family: "MOTOMINI", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 24000}},
	// welding
	{Family: "AR", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 36000, InternalCable: hours(12000)}},
	{Family: "MA", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000, InternalCable: hours(12000)}},
	{Family: "SP", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000, InternalCable: hours(12000)}},
	{Family: "ES", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000, InternalCable: hours(12000)}},
	// collaborative
	{Family: "HC", Policy: Policy{PeriodicMaintenance: 12000, Overhaul: 40000}},
	// palletizing
	{Family: "PL", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 40000}},
	// painting
	{Family: "MPX", Policy: Policy{PeriodicMaintenance: 4000, Overhaul: 24000}},
	// controllers, used when the robot model is unknown
	{Family: "YRC1000MICRO", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 24000}},
	{Family: "YRC1000", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 36000}},
	{Family: "DX200", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000}},
	{Family: "DX100", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 30000}},
	{Family: "FS100", Policy: Policy{PeriodicMaintenance: 6000, Overhaul: 24000}},
}

// IntervalResolver looks up maintenance intervals by model name.
type IntervalResolver struct {
	entries  []ModelInterval
	fallback Policy
}

// NewIntervalResolver builds a resolver over table. Entries are copied.
func NewIntervalResolver(table []ModelInterval, fallback Policy) *IntervalResolver {
	entries := make([]ModelInterval, 0, len(table))
	for _, e := range table {
		family := normaliseModel(e.Family)
		if family == "" {
			continue
		}
		e.Family = family
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Family) > len(entries[j].Family)
	})
	return &IntervalResolver{entries: entries, fallback: fallback}
}

// NewDefaultIntervalResolver returns a resolver over the built-in table.
func NewDefaultIntervalResolver() *IntervalResolver {
	return NewIntervalResolver(DefaultIntervalTable, DefaultPolicy)
}

// Resolve returns the policy for a robot, preferring the robot model and
// falling back to the controller model, then to the default policy.
func (r *IntervalResolver) Resolve(robotModel, controllerModel string) Policy {
	if p, ok := r.lookup(robotModel); ok {
		return p
	}
	if p, ok := r.lookup(controllerModel); ok {
		return p
	}
	return r.fallback
}

// Fallback returns the policy used for unmatched models.
func (r *IntervalResolver) Fallback() Policy {
	return r.fallback
}

func (r *IntervalResolver) lookup(model string) (Policy, bool) {
	m := normaliseModel(model)
	if m == "" {
		return Policy{}, false
	}
	for _, e := range r.entries {
		if strings.HasPrefix(m, e.Family) {
			return e.Policy, true
		}
	}
	return Policy{}, false
}

func normaliseModel(model string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(model)))
}

// IntervalFile is the YAML layout of an interval table override.
type IntervalFile struct {
	Default *Policy         `yaml:"default"`
	Models  []ModelInterval `yaml:"models"`
}

// LoadIntervalResolver reads an interval table from path and merges it over
// the built-in table. File entries win over built-in entries of the same family.
func LoadIntervalResolver(path string) (*IntervalResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read interval table: %w", err)
	}
	return ParseIntervalResolver(data)
}

// ParseIntervalResolver is LoadIntervalResolver over raw YAML.
func ParseIntervalResolver(data []byte) (*IntervalResolver, error) {
	var file IntervalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse interval table: %w", err)
	}

	fallback := DefaultPolicy
	if file.Default != nil {
		if err := file.Default.validate(); err != nil {
			return nil, fmt.Errorf("default policy: %w", err)
		}
		fallback = *file.Default
	}

	overridden := make(map[string]bool, len(file.Models))
	for _, m := range file.Models {
		if err := m.Policy.validate(); err != nil {
			return nil, fmt.Errorf("family %q: %w", m.Family, err)
		}
		overridden[normaliseModel(m.Family)] = true
	}
	table := append([]ModelInterval{}, file.Models...)
	for _, e := range DefaultIntervalTable {
		if !overridden[normaliseModel(e.Family)] {
			table = append(table, e)
		}
	}
	return NewIntervalResolver(table, fallback), nil
}

func (p Policy) validate() error {
	if p.PeriodicMaintenance <= 0 {
		return fmt.Errorf("periodic_maintenance must be positive")
	}
	if p.Overhaul <= 0 {
		return fmt.Errorf("overhaul must be positive")
	}
	if p.InternalCable != nil && *p.InternalCable < 0 {
		return fmt.Errorf("internal_cable must not be negative")
	}
	return nil
}
