package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is a fixture: record lists keyed by entity kind. Declared ids are
// kept as-is so cross-kind foreign keys in the fixture stay valid.
type Seed map[string][]Record

// LoadSeedFile reads a YAML fixture from disk.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses a YAML fixture document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for kind, records := range seed {
		for i, rec := range records {
			if rec == nil {
				return nil, fmt.Errorf("seed %s[%d]: empty record", kind, i)
			}
			if id, ok := rec["id"]; ok {
				if _, isString := id.(string); !isString {
					return nil, fmt.Errorf("seed %s[%d]: id must be a string, got %T", kind, i, id)
				}
			}
		}
	}
	return seed, nil
}

// LoadSeed inserts all fixture records, preserving fixture ids and the
// per-kind declaration order.
func (s *Store) LoadSeed(seed Seed) {
	for kind, records := range seed {
		for _, rec := range records {
			s.put(kind, cloneRecord(rec))
		}
	}
}
