package main

import (
	"fmt"
	"strings"
)

// Filters narrows the catalog for a run. Zero values disable a filter.
type Filters struct {
	State string
	Batch int
}

// SelectUnits applies the state filter and then the batch window.
//
// An unknown state is a configuration error listing the valid states. A
// batch past the end yields an empty selection so callers can keep
// incrementing the batch index until nothing is left.
func SelectUnits(catalog *Catalog, filters Filters, batchSize int) ([]Unit, error) {
	units := catalog.Units()

	if filters.State != "" {
		var matched []Unit
		for _, u := range units {
			if strings.EqualFold(u.State, filters.State) {
				matched = append(matched, u)
			}
		}
		if len(matched) == 0 {
			return nil, &ConfigError{
				Reason:  fmt.Sprintf("no cities found for state: %s", filters.State),
				Details: catalog.States(),
			}
		}
		units = matched
	}

	if filters.Batch != 0 {
		if filters.Batch < 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("batch must be a positive integer, got %d", filters.Batch)}
		}
		if batchSize <= 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("batch size must be positive, got %d", batchSize)}
		}
		units = batchWindow(units, filters.Batch, batchSize)
	}

	return units, nil
}

// batchWindow returns window batch (1-indexed) of the given size.
func batchWindow(units []Unit, batch, size int) []Unit {
	start := (batch - 1) * size
	if start >= len(units) {
		return []Unit{}
	}
	end := min(start+size, len(units))
	return units[start:end]
}
