package presets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/timetable-bot/internal/presets"
	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

const validPreset = `
id: lyceum
name: "Физмат лицей"
entries:
  - fragment: Физика
    level: очень сложный
  - fragment: математика
    level: очень сложный
  - fragment: история
    level: средний
`

func TestCatalog_LoadsPresets(t *testing.T) {
	dir := setupPresets(t)

	catalog, err := presets.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	all := catalog.All()
	if len(all) != 1 {
		t.Fatalf("All() = %d presets, want 1 (invalid file should be skipped)", len(all))
	}

	p, found := catalog.Get("LYCEUM")
	if !found {
		t.Fatal("Get(LYCEUM) not found")
	}
	if p.Name != "Физмат лицей" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Table.Len() != 3 {
		t.Fatalf("Table.Len() = %d, want 3", p.Table.Len())
	}
	if p.Table.Entries[0].Fragment != "физика" || p.Table.Entries[0].Tier != schedule.TierVeryHard {
		t.Errorf("Entries[0] = %+v, want физика/очень сложный in file order", p.Table.Entries[0])
	}
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	catalog, err := presets.NewCatalog(setupPresets(t))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	p, _ := catalog.Get("lyceum")
	p.Table.Set("физика", schedule.TierEasy)

	again, _ := catalog.Get("lyceum")
	if tier, _ := again.Table.Get("физика"); tier != schedule.TierVeryHard {
		t.Error("mutating a fetched preset leaked into the catalog")
	}
}

func TestCatalog_MissingDir(t *testing.T) {
	catalog, err := presets.NewCatalog(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if len(catalog.All()) != 0 {
		t.Error("expected empty catalog")
	}
	if _, found := catalog.Get("standard"); found {
		t.Error("Get() on empty catalog should not find anything")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad level", "id: x\nname: X\nentries:\n  - fragment: химия\n    level: нормальный\n"},
		{"missing entries", "id: x\nname: X\n"},
		{"bad id", "id: \"Has Spaces\"\nname: X\nentries:\n  - fragment: химия\n    level: легкий\n"},
		{"not yaml", "id: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := presets.Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}

func TestBundledPresetsAreValid(t *testing.T) {
	catalog, err := presets.NewCatalog(filepath.Join("..", "..", "presets"))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	for _, id := range []string{"standard", "primary"} {
		if _, found := catalog.Get(id); !found {
			t.Errorf("bundled preset %q missing or invalid", id)
		}
	}
}

func setupPresets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "lyceum.yaml"), []byte(validPreset), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("id: broken\nname: Broken\nentries: []\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# presets"), 0o644)

	return dir
}
