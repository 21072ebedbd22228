package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed file errors.
var (
	ErrSeedNotFound = errors.New("seed file not found")
	ErrSeedEmpty    = errors.New("seed file is empty")
	ErrSeedInvalid  = errors.New("invalid seed YAML")
)

// LoadSeedFile reads and validates a YAML seed file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Seed{}, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return Seed{}, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	seed, err := ParseSeed(data)
	if err != nil {
		return Seed{}, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes YAML seed data. Unknown keys are rejected.
func ParseSeed(data []byte) (Seed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Seed{}, ErrSeedEmpty
	}

	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	if err := seed.Validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}
