// Package data loads tuning tables from YAML files.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// LoadArchetypes reads an enemy stat table from a YAML file. Entries
// override the built-in defaults per archetype; archetypes absent from the
// file keep their defaults. A missing file is not an error — the built-in
// table is authoritative then.
func LoadArchetypes(path string) (game.ArchetypeTable, error) {
	table := game.DefaultArchetypes()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("read archetypes %s: %w", path, err)
	}

	var overrides map[string]game.ArchetypeStats
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse archetypes %s: %w", path, err)
	}

	for name, stats := range overrides {
		id := game.ArchetypeID(name)
		if _, known := table[id]; !known {
			return nil, fmt.Errorf("archetypes %s: unknown archetype %q", path, name)
		}
		if stats.Health <= 0 {
			return nil, fmt.Errorf("archetypes %s: %q has non-positive health", path, name)
		}
		table[id] = stats
	}
	return table, nil
}
