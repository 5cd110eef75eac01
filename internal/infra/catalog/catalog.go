// Package catalog loads the damage mechanism reference table once at startup
// and serves it read-only for the lifetime of the process.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/mechanisms"
)

//go:embed default.yaml
var defaultCatalog []byte

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://rbi-inspect.local/schemas/damage-mechanisms.schema.json"

type file struct {
	Mechanisms []mechanisms.DamageMechanism `yaml:"mechanisms"`
}

// Catalog is an immutable snapshot. It satisfies mechanisms.Catalog.
type Catalog struct {
	items  []mechanisms.DamageMechanism
	byName map[string]mechanisms.DamageMechanism
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse validates raw YAML against the catalog schema and builds a Catalog.
func Parse(data []byte) (*Catalog, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{byName: make(map[string]mechanisms.DamageMechanism, len(f.Mechanisms))}
	ids := make(map[string]bool, len(f.Mechanisms))
	for _, dm := range f.Mechanisms {
		if !dm.Category.Valid() {
			return nil, fmt.Errorf("mechanism %q: unknown category %q", dm.Name, dm.Category)
		}
		if _, dup := c.byName[dm.Name]; dup {
			return nil, fmt.Errorf("duplicate mechanism name %q", dm.Name)
		}
		if ids[dm.ID] {
			return nil, fmt.Errorf("duplicate mechanism id %q", dm.ID)
		}
		ids[dm.ID] = true
		c.byName[dm.Name] = dm
		c.items = append(c.items, dm)
	}
	sort.SliceStable(c.items, func(i, j int) bool {
		if c.items[i].Category != c.items[j].Category {
			return c.items[i].Category < c.items[j].Category
		}
		return c.items[i].Name < c.items[j].Name
	})
	return c, nil
}

// validate checks the document shape before any typed decoding so a bad
// file fails with a precise location.
func validate(data []byte) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("catalog schema load failed: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("catalog schema compile failed: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	// Round-trip through JSON so numbers and maps have the types the
	// validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// ListAll returns a copy so callers cannot mutate the snapshot.
func (c *Catalog) ListAll() []mechanisms.DamageMechanism {
	out := make([]mechanisms.DamageMechanism, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Lookup(name string) (mechanisms.DamageMechanism, bool) {
	dm, ok := c.byName[name]
	return dm, ok
}

func (c *Catalog) Len() int { return len(c.items) }
