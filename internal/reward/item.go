// Package reward tracks collectible ownership and performs rarity-weighted
// reward draws.
package reward

import "strings"

// Rarity is the weight-bearing tier of a collectible.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
)

// DefaultWeight applies to rarities missing from the weight table.
const DefaultWeight = 30

var rarityWeights = map[Rarity]int{
	RarityCommon:   60,
	RarityUncommon: 25,
	RarityRare:     12,
	RarityEpic:     3,
}

// AllRarities returns the known rarities from most to least common.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic}
}

// Weight returns the draw weight for r.
func (r Rarity) Weight() int {
	if w, ok := rarityWeights[Rarity(strings.ToLower(string(r)))]; ok {
		return w
	}
	return DefaultWeight
}

// DisplayName returns a human-readable label.
func (r Rarity) DisplayName() string {
	switch Rarity(strings.ToLower(string(r))) {
	case RarityCommon:
		return "Common"
	case RarityUncommon:
		return "Uncommon"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case "":
		return "Unknown"
	default:
		return string(r)
	}
}

// Item is a catalog entry.
type Item struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Species     string `yaml:"species,omitempty" json:"species,omitempty"`
	Squad       string `yaml:"squad,omitempty" json:"squad,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Rarity      Rarity `yaml:"rarity" json:"rarity"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Image       string `yaml:"image_url,omitempty" json:"image_url,omitempty"`
}

// Title returns "Name the Species", or just the name when species is empty.
func (it Item) Title() string {
	if it.Species == "" {
		return it.Name
	}
	return it.Name + " the " + it.Species
}

// Stats summarizes collection progress.
type Stats struct {
	Owned      int
	Total      int
	Percentage int
}
