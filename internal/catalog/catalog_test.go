package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/mathdrill/internal/reward"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestDefaultCatalog(t *testing.T) {
	items := Default()
	if len(items) != 16 {
		t.Fatalf("expected 16 bundled items, got %d", len(items))
	}
	counts := map[reward.Rarity]int{}
	for _, it := range items {
		counts[it.Rarity]++
		if it.Rarity.Weight() == reward.DefaultWeight {
			t.Fatalf("bundled item %s has unknown rarity %q", it.ID, it.Rarity)
		}
	}
	for _, r := range reward.AllRarities() {
		if counts[r] == 0 {
			t.Fatalf("bundled catalog has no %s items", r)
		}
	}
	if _, err := reward.New(items, nil, nil); err != nil {
		t.Fatalf("bundled catalog rejected by engine: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "c.yaml", `version: "2"
items:
  - id: a
    name: Alpha
    rarity: rare
    image_url: a.png
  - id: b
    name: Beta
    rarity: shiny
`)
	items, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 2 || items[0].Image != "a.png" || items[1].Rarity.Weight() != reward.DefaultWeight {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "c.json", `{"version":"1","items":[{"id":"x","name":"X","species":"Cat","rarity":"epic"}]}`)
	items, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 1 || items[0].Title() != "X the Cat" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "items: []",
		"no id":     "items:\n  - name: A",
		"no name":   "items:\n  - id: a",
		"duplicate": "items:\n  - {id: a, name: A}\n  - {id: a, name: B}",
		"garbage":   "items: [",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
	}
}

func TestResolve(t *testing.T) {
	items, src, err := Resolve("")
	if err != nil || src != SourceBundled || len(items) != 16 {
		t.Fatalf("expected bundled catalog, got %s %d %v", src, len(items), err)
	}

	items, src, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || src != SourceFallback {
		t.Fatalf("expected fallback with error, got %s %v", src, err)
	}
	if len(items) != 2 || items[0].ID != "aurora_unicorn" || items[1].ID != "dante_devil" {
		t.Fatalf("unexpected fallback items %+v", items)
	}

	path := writeFile(t, "ok.yaml", "items:\n  - {id: z, name: Z, rarity: common}")
	items, src, err = Resolve(path)
	if err != nil || src != SourceFile || len(items) != 1 {
		t.Fatalf("expected file catalog, got %s %d %v", src, len(items), err)
	}
}
