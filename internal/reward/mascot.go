package reward

import (
	"errors"
	"fmt"
)

// ErrNotOwned is returned when a mascot is chosen before it was collected.
var ErrNotOwned = errors.New("item not collected yet")

// DefaultMascotID is shown while no collected mascot is chosen.
const DefaultMascotID = "luna_cat"

// ChooseMascot checks that id can be the player's mascot. Only collected
// items qualify.
func (e *Engine) ChooseMascot(id string) (Item, error) {
	it, ok := e.Lookup(id)
	if !ok {
		return Item{}, fmt.Errorf("unknown item %q", id)
	}
	if !e.IsOwned(id) {
		return Item{}, fmt.Errorf("%w: %q", ErrNotOwned, id)
	}
	return it, nil
}

// Mascot resolves the mascot to show. chosen wins while it is owned;
// otherwise the default item is used when the catalog has it.
func (e *Engine) Mascot(chosen string) (Item, bool) {
	if chosen != "" && e.IsOwned(chosen) {
		return e.Lookup(chosen)
	}
	return e.Lookup(DefaultMascotID)
}
