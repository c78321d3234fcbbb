// Package presets loads named difficulty tables from YAML files.
package presets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

const presetSchema = `{
  "type": "object",
  "required": ["id", "name", "entries"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9_-]+$"},
    "name": {"type": "string", "minLength": 1},
    "entries": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["fragment", "level"],
        "properties": {
          "fragment": {"type": "string", "minLength": 1},
          "level": {"type": "string", "enum": ["очень сложный", "сложный", "средний", "легкий"]}
        },
        "additionalProperties": false
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(presetSchema)

// Preset is a named difficulty table.
type Preset struct {
	ID    string
	Name  string
	Table *schedule.DifficultyTable
}

type presetFile struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Entries []struct {
		Fragment string `yaml:"fragment"`
		Level    string `yaml:"level"`
	} `yaml:"entries"`
}

// Catalog holds presets loaded from a directory.
type Catalog struct {
	rootDir string
	presets map[string]Preset
	mu      sync.RWMutex
}

// NewCatalog loads every *.yaml / *.yml preset under rootDir. A missing
// directory yields an empty catalog; invalid files are skipped with a warning.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		rootDir: rootDir,
		presets: make(map[string]Preset),
	}

	if err := c.loadAll(); err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}

	slog.Info("difficulty presets loaded", "presets", len(c.presets))
	return c, nil
}

// Get returns a preset by ID. The table is a copy.
func (c *Catalog) Get(id string) (Preset, bool) {
	if c == nil {
		return Preset{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.presets[strings.ToLower(strings.TrimSpace(id))]
	if ok {
		p.Table = p.Table.Clone()
	}
	return p, ok
}

// All returns presets sorted by ID.
func (c *Catalog) All() []Preset {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) loadAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return c.loadPreset(path)
		}
		return nil
	})
}

func (c *Catalog) loadPreset(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p, err := Parse(data)
	if err != nil {
		slog.Warn("skipping invalid preset", "path", path, "error", err)
		return nil
	}

	c.mu.Lock()
	c.presets[p.ID] = p
	c.mu.Unlock()
	return nil
}

// Parse validates a YAML preset document and builds its table.
func Parse(data []byte) (Preset, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Preset{}, fmt.Errorf("parse yaml: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Preset{}, fmt.Errorf("validate preset: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Preset{}, fmt.Errorf("invalid preset: %s", strings.Join(msgs, "; "))
	}

	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}

	table := &schedule.DifficultyTable{}
	for _, e := range f.Entries {
		tier, ok := schedule.ParseLevel(e.Level)
		if !ok {
			return Preset{}, fmt.Errorf("unknown level %q for %q", e.Level, e.Fragment)
		}
		table.Set(strings.TrimSpace(schedule.Fold(e.Fragment)), tier)
	}

	return Preset{ID: f.ID, Name: f.Name, Table: table}, nil
}
