package reward

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/verte-zerg/mathdrill/internal/rng"
)

var (
	ErrEmptyCatalog  = errors.New("catalog is empty")
	ErrDuplicateItem = errors.New("duplicate catalog item")
)

// Engine owns the set of awarded item IDs for one collection. All methods
// are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	items  []Item
	index  map[string]int
	owned  map[string]struct{}
	pruned []string
	src    rng.Source
}

// New builds an Engine over catalog with the given owned IDs. Owned IDs that
// are not in the catalog are dropped and reported by Pruned.
func New(catalog []Item, owned []string, src rng.Source) (*Engine, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	if src == nil {
		src = rng.New()
	}
	e := &Engine{
		items: append([]Item(nil), catalog...),
		index: make(map[string]int, len(catalog)),
		owned: make(map[string]struct{}, len(owned)),
		src:   src,
	}
	for i, it := range e.items {
		if _, dup := e.index[it.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, it.ID)
		}
		e.index[it.ID] = i
	}
	for _, id := range owned {
		if _, ok := e.index[id]; !ok {
			e.pruned = append(e.pruned, id)
			continue
		}
		e.owned[id] = struct{}{}
	}
	return e, nil
}

// Pruned returns owned IDs that New dropped because the catalog lacks them.
func (e *Engine) Pruned() []string {
	return append([]string(nil), e.pruned...)
}

// IsOwned reports whether id has been awarded.
func (e *Engine) IsOwned(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.owned[id]
	return ok
}

// Stats returns owned and total counts with a rounded percentage.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := len(e.items)
	owned := len(e.owned)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(owned) / float64(total) * 100))
	}
	return Stats{Owned: owned, Total: total, Percentage: pct}
}

// Draw awards one unowned item picked with probability proportional to its
// rarity weight. ok is false when every item is already owned; ownership is
// then left untouched.
func (e *Engine) Draw() (item Item, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// cumulative[i] is the running weight total through candidates[i].
	candidates := make([]int, 0, len(e.items)-len(e.owned))
	cumulative := make([]int, 0, cap(candidates))
	total := 0
	for i, it := range e.items {
		if _, owned := e.owned[it.ID]; owned {
			continue
		}
		total += it.Rarity.Weight()
		candidates = append(candidates, i)
		cumulative = append(cumulative, total)
	}
	if len(candidates) == 0 {
		return Item{}, false
	}

	target := e.src.Float64() * float64(total)
	pick := sort.Search(len(cumulative), func(i int) bool {
		return float64(cumulative[i]) > target
	})
	if pick >= len(candidates) {
		pick = len(candidates) - 1
	}
	item = e.items[candidates[pick]]
	e.owned[item.ID] = struct{}{}
	return item, true
}

// Reset forgets every awarded item.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.owned = make(map[string]struct{})
}

// Owned returns owned IDs in catalog order.
func (e *Engine) Owned() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.owned))
	for _, it := range e.items {
		if _, ok := e.owned[it.ID]; ok {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Items returns the full catalog.
func (e *Engine) Items() []Item {
	return append([]Item(nil), e.items...)
}

// OwnedItems returns owned catalog entries in catalog order.
func (e *Engine) OwnedItems() []Item {
	return e.filter(true)
}

// UnownedItems returns catalog entries not yet awarded.
func (e *Engine) UnownedItems() []Item {
	return e.filter(false)
}

// Lookup finds a catalog entry by ID.
func (e *Engine) Lookup(id string) (Item, bool) {
	i, ok := e.index[id]
	if !ok {
		return Item{}, false
	}
	return e.items[i], true
}

func (e *Engine) filter(owned bool) []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Item
	for _, it := range e.items {
		if _, ok := e.owned[it.ID]; ok == owned {
			out = append(out, it)
		}
	}
	return out
}
