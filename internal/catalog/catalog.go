// Package catalog loads collectible catalogs from YAML or JSON files.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mathdrill/internal/reward"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Source names where a resolved catalog came from.
type Source string

const (
	SourceFile     Source = "file"
	SourceBundled  Source = "bundled"
	SourceFallback Source = "fallback"
)

//go:embed default.yaml
var bundled []byte

// File is the on-disk catalog layout. JSON is a subset of YAML, so both parse.
type File struct {
	Version string        `yaml:"version"`
	Items   []reward.Item `yaml:"items"`
}

// Load reads and validates the catalog at path.
func Load(path string) ([]reward.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Parse decodes and validates catalog bytes.
func Parse(data []byte) ([]reward.Item, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := validate(f.Items); err != nil {
		return nil, err
	}
	return f.Items, nil
}

func validate(items []reward.Item) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("%w: item %d has no id", ErrInvalidCatalog, i)
		}
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: item %q has no name", ErrInvalidCatalog, it.ID)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// Default returns the bundled catalog.
func Default() []reward.Item {
	items, err := Parse(bundled)
	if err != nil {
		panic(fmt.Sprintf("bundled catalog is broken: %v", err))
	}
	return items
}

// Fallback returns the minimal built-in catalog used when a file cannot be loaded.
func Fallback() []reward.Item {
	return []reward.Item{
		{
			ID:          "aurora_unicorn",
			Name:        "Aurora",
			Species:     "Unicorn",
			Squad:       "Magical Squad",
			Color:       "Purple",
			Rarity:      reward.RarityCommon,
			Description: "Aurora loves to practice math problems under the rainbow!",
			Image:       "assets/aurora_the_unicorn.png",
		},
		{
			ID:          "dante_devil",
			Name:        "Dante",
			Species:     "Devil",
			Squad:       "Spooky Squad",
			Color:       "Red",
			Rarity:      reward.RarityCommon,
			Description: "Dante makes math practice devilishly fun!",
			Image:       "assets/dante_the_devil.png",
		},
	}
}

// Resolve picks the catalog for path. An empty path selects the bundled
// catalog. When path cannot be loaded the fallback is returned together with
// the load error so the caller can report it.
func Resolve(path string) ([]reward.Item, Source, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), SourceBundled, nil
	}
	items, err := Load(path)
	if err != nil {
		return Fallback(), SourceFallback, err
	}
	return items, SourceFile, nil
}
