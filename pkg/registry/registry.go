// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/common/validation"
)

// Template is one ad template in the local catalog. The catalog backs
// template selection when the backend listing is unavailable and pins the
// set of templates a deployment supports.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	PromptSlots int    `json:"promptSlots,omitempty"`
}

// TemplateRegistry is the loaded catalog.
type TemplateRegistry struct {
	Templates []Template `json:"templates"`

	byID map[string]*Template
}

// LoadRegistry reads and validates the catalog file. Every entry must pass
// schema validation; a single bad entry fails the whole load so a deployment
// never runs with a partial catalog.
func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Templates []json.RawMessage `json:"templates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}

	reg := &TemplateRegistry{byID: make(map[string]*Template)}
	for i, entry := range raw.Templates {
		var asMap map[string]interface{}
		if err := json.Unmarshal(entry, &asMap); err != nil {
			return nil, fmt.Errorf("parse template entry %d: %w", i, err)
		}
		if result := validation.ValidateTemplateEntry(asMap); !result.Valid {
			return nil, fmt.Errorf("invalid template entry %d: %s", i, result.Error())
		}

		var tpl Template
		if err := json.Unmarshal(entry, &tpl); err != nil {
			return nil, fmt.Errorf("parse template entry %d: %w", i, err)
		}
		reg.Templates = append(reg.Templates, tpl)
	}

	for i := range reg.Templates {
		reg.byID[reg.Templates[i].ID] = &reg.Templates[i]
	}
	return reg, nil
}

// Get looks up a template by ID.
func (r *TemplateRegistry) Get(id string) (*Template, error) {
	if tpl, ok := r.byID[id]; ok {
		return tpl, nil
	}
	return nil, stderrors.NewTemplateNotFoundError(id)
}

// ByKind returns the templates of one kind, in catalog order.
func (r *TemplateRegistry) ByKind(kind string) []Template {
	var out []Template
	for _, tpl := range r.Templates {
		if tpl.Kind == kind {
			out = append(out, tpl)
		}
	}
	return out
}
