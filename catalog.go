package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unit is one city landing page to generate
type Unit struct {
	City         string   `yaml:"city" json:"city"`
	State        string   `yaml:"state" json:"state"`
	StateAbbr    string   `yaml:"state_abbr" json:"state_abbr"`
	Region       string   `yaml:"region" json:"region"`
	NearbyStates []string `yaml:"nearby_states" json:"nearby_states"`
	NearbyCities []string `yaml:"nearby_cities" json:"nearby_cities"`
	Population   string   `yaml:"population,omitempty" json:"population,omitempty"`
	LocalFood    []string `yaml:"local_food,omitempty" json:"local_food,omitempty"`
}

// Key identifies the unit across the catalog.
func (u Unit) Key() string {
	return u.City + ", " + u.State
}

// clone copies u including its slices.
func (u Unit) clone() Unit {
	u.NearbyStates = append([]string(nil), u.NearbyStates...)
	u.NearbyCities = append([]string(nil), u.NearbyCities...)
	u.LocalFood = append([]string(nil), u.LocalFood...)
	return u
}

// Catalog is the immutable, ordered set of units known to a run.
type Catalog struct {
	units []Unit
}

// NewCatalog validates units and takes a private copy of them.
func NewCatalog(units []Unit) (*Catalog, error) {
	seen := make(map[string]int, len(units))
	copied := make([]Unit, 0, len(units))

	for i, u := range units {
		u.City = strings.TrimSpace(u.City)
		u.State = strings.TrimSpace(u.State)
		if u.City == "" || u.State == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("catalog entry %d: city and state are required", i+1)}
		}

		key := strings.ToLower(u.Key())
		if prev, ok := seen[key]; ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("catalog entry %d duplicates entry %d (%s)", i+1, prev+1, u.Key())}
		}
		seen[key] = i

		copied = append(copied, u.clone())
	}

	return &Catalog{units: copied}, nil
}

// ParseCatalog decodes a YAML list of units
func ParseCatalog(data []byte) (*Catalog, error) {
	var units []Unit
	if err := yaml.Unmarshal(data, &units); err != nil {
		return nil, &ConfigError{Reason: "parsing catalog YAML: " + err.Error()}
	}
	return NewCatalog(units)
}

// LoadCatalog reads the catalog at path, or the embedded one when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: "reading catalog " + path + ": " + err.Error()}
	}
	return ParseCatalog(data)
}

// Units returns a deep copy of the units in declaration order.
func (c *Catalog) Units() []Unit {
	units := make([]Unit, 0, len(c.units))
	for _, u := range c.units {
		units = append(units, u.clone())
	}
	return units
}

// Len returns the number of units.
func (c *Catalog) Len() int {
	return len(c.units)
}

// States returns the distinct state names in declaration order.
func (c *Catalog) States() []string {
	return distinctStates(c.units)
}

func distinctStates(units []Unit) []string {
	seen := make(map[string]bool)
	var states []string
	for _, u := range units {
		if !seen[u.State] {
			seen[u.State] = true
			states = append(states, u.State)
		}
	}
	return states
}
