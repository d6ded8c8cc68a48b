package reward

import (
	"errors"
	"testing"

	"github.com/verte-zerg/mathdrill/internal/rng"
)

func TestChooseMascotRejectsUnownedItems(t *testing.T) {
	e, err := New(items("luna_cat", "common", "dante", "epic"), nil, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := e.ChooseMascot("dante"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if _, err := e.ChooseMascot("ghost"); err == nil || errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected unknown item error, got %v", err)
	}
	for range 2 {
		if _, ok := e.Draw(); !ok {
			t.Fatalf("expected a draw")
		}
	}
	it, err := e.ChooseMascot("dante")
	if err != nil || it.ID != "dante" {
		t.Fatalf("expected dante once owned, got %+v %v", it, err)
	}
}

func TestMascotFallsBackAfterReset(t *testing.T) {
	e, err := New(items("luna_cat", "common", "dante", "epic"), []string{"dante"}, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if it, ok := e.Mascot("dante"); !ok || it.ID != "dante" {
		t.Fatalf("expected dante, got %+v %v", it, ok)
	}
	e.Reset()
	if it, ok := e.Mascot("dante"); !ok || it.ID != DefaultMascotID {
		t.Fatalf("expected default mascot after reset, got %+v %v", it, ok)
	}
	if it, ok := e.Mascot(""); !ok || it.ID != DefaultMascotID {
		t.Fatalf("expected default mascot when none chosen, got %+v %v", it, ok)
	}
}

func TestMascotWithoutDefaultInCatalog(t *testing.T) {
	e, err := New(items("a", "common"), nil, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := e.Mascot("a"); ok {
		t.Fatalf("expected no mascot for an unowned pick without a default item")
	}
}
