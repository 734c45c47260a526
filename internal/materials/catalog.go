package materials

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rate describes the uncertain per-kg rate of one impact metric.
// Draws fall in [Baseline*(1-Spread), Baseline*(1+Spread)] and never below Floor.
// Floor may not exceed Baseline, which keeps the clamped mean inside the P10..P90 band.
type Rate struct {
	Baseline float64 `yaml:"baseline" json:"baseline"`
	Spread   float64 `yaml:"spread" json:"spread"`
	Floor    float64 `yaml:"floor" json:"floor"`
}

// Bounds returns the low, mode and high points of the rate's triangular distribution.
func (r Rate) Bounds() (low, mode, high float64) {
	return r.Baseline * (1 - r.Spread), r.Baseline, r.Baseline * (1 + r.Spread)
}

func (r Rate) validate(field string) error {
	for name, v := range map[string]float64{"baseline": r.Baseline, "spread": r.Spread, "floor": r.Floor} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s.%s must be a finite non-negative number, got %v", field, name, v)
		}
	}
	if r.Spread > 1 {
		return fmt.Errorf("%s.spread must be at most 1, got %v", field, r.Spread)
	}
	if r.Floor > r.Baseline {
		return fmt.Errorf("%s.floor must not exceed baseline (%v), got %v", field, r.Baseline, r.Floor)
	}
	return nil
}

// Material is the impact model of one packaging material.
type Material struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	CostUSD Rate   `yaml:"cost_usd_per_kg" json:"cost_usd_per_kg"`
	CO2Kg   Rate   `yaml:"co2_kg_per_kg" json:"co2_kg_per_kg"`
}

// Validate checks the material's rates.
func (m Material) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("material id is required")
	}
	if err := m.CostUSD.validate("cost_usd_per_kg"); err != nil {
		return fmt.Errorf("material %q: %w", m.ID, err)
	}
	if err := m.CO2Kg.validate("co2_kg_per_kg"); err != nil {
		return fmt.Errorf("material %q: %w", m.ID, err)
	}
	return nil
}

// Catalog is an immutable set of materials indexed by id.
type Catalog struct {
	byID map[string]Material
	ids  []string
}

// NewCatalog validates materials and indexes them. Ids are matched case-insensitively.
func NewCatalog(list []Material) (*Catalog, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("material catalog is empty")
	}
	c := &Catalog{byID: make(map[string]Material, len(list))}
	for _, m := range list {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		key := normalizeID(m.ID)
		if _, dup := c.byID[key]; dup {
			return nil, fmt.Errorf("duplicate material id %q", m.ID)
		}
		m.ID = key
		if m.Name == "" {
			m.Name = m.ID
		}
		c.byID[key] = m
		c.ids = append(c.ids, key)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Lookup returns the material with the given id.
func (c *Catalog) Lookup(id string) (Material, bool) {
	m, ok := c.byID[normalizeID(id)]
	return m, ok
}

// List returns all materials ordered by id.
func (c *Catalog) List() []Material {
	out := make([]Material, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

type catalogFile struct {
	Materials []Material `yaml:"materials"`
}

// Load reads a YAML catalog file of the form `materials: [{id, name, cost_usd_per_kg, co2_kg_per_kg}]`.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse materials: %w", err)
	}

	c, err := NewCatalog(f.Materials)
	if err != nil {
		return nil, fmt.Errorf("validate materials: %w", err)
	}
	return c, nil
}

// LoadOrDefault loads the catalog at path, or the built-in catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
