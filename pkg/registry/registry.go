// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*TemplateRegistry, error) {
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON.
func SaveRegistry(path string, reg *TemplateRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate rejects duplicate ids and more than one active template per category.
func (r *TemplateRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Templates))
	active := make(map[string]string)
	for _, t := range r.Templates {
		if t.ID == "" {
			return fmt.Errorf("template registry: entry without id")
		}
		if ids[t.ID] {
			return fmt.Errorf("template registry: duplicate id %q", t.ID)
		}
		ids[t.ID] = true
		if !t.Active {
			continue
		}
		cat := strings.ToUpper(t.Category)
		if prev, ok := active[cat]; ok {
			return fmt.Errorf("template registry: category %s has two active templates (%s, %s)", t.Category, prev, t.ID)
		}
		active[cat] = t.ID
	}
	return nil
}

// ForCategory returns the active template for a category, matched case-insensitively.
func (r *TemplateRegistry) ForCategory(category string) (Template, bool) {
	for _, t := range r.Templates {
		if t.Active && strings.EqualFold(t.Category, category) {
			return t, true
		}
	}
	return Template{}, false
}

// Get looks up a template by id regardless of its active flag.
func (r *TemplateRegistry) Get(id string) (Template, bool) {
	for _, t := range r.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Asset returns the storage key of the template's document.
func (t Template) Asset() string {
	if t.AssetKey != "" {
		return t.AssetKey
	}
	return t.ID + ".docx"
}

// Upsert replaces the entry with the same id or appends it. Activating an
// entry deactivates the other templates of its category.
func (r *TemplateRegistry) Upsert(t Template) {
	if t.Active {
		for i := range r.Templates {
			if r.Templates[i].ID != t.ID && strings.EqualFold(r.Templates[i].Category, t.Category) {
				r.Templates[i].Active = false
			}
		}
	}
	for i := range r.Templates {
		if r.Templates[i].ID == t.ID {
			r.Templates[i] = t
			return
		}
	}
	r.Templates = append(r.Templates, t)
}
