package sapling

import (
	"context"
	"fmt"
)

// SettingsField is one field of a settings panel. Type selects the editor
// ("container", "list", "asset", "title", ...); the remaining fields are
// used by the types that need them.
type SettingsField struct {
	Label       string            `json:"label" yaml:"label"`
	Type        string            `json:"type" yaml:"type"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Value       any               `json:"value,omitempty" yaml:"value,omitempty"`
	Collapsable bool              `json:"collapsable,omitempty" yaml:"collapsable,omitempty"`
	Fields      [][]SettingsField `json:"fields,omitempty" yaml:"fields,omitempty"`

	// List fields.
	Items    [][][]SettingsField `json:"items,omitempty" yaml:"items,omitempty"`
	Template [][]SettingsField   `json:"template,omitempty" yaml:"template,omitempty"`
	Entry    map[string]any      `json:"entry,omitempty" yaml:"entry,omitempty"`
}

// SettingsTab groups fields under one tab of a definition.
type SettingsTab struct {
	Label  string            `json:"label" yaml:"label"`
	Icon   string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields [][]SettingsField `json:"fields" yaml:"fields"`
}

// SettingsDefinition is the settings panel one module contributes.
type SettingsDefinition struct {
	Name  string        `json:"name" yaml:"name"`
	Label string        `json:"label" yaml:"label"`
	Icon  string        `json:"icon,omitempty" yaml:"icon,omitempty"`
	Tabs  []SettingsTab `json:"tabs" yaml:"tabs"`
}

// SettingsEvent collects definitions from every OnSettings handler.
type SettingsEvent struct {
	Definitions []SettingsDefinition
	Additional  map[string]any
}

// Add appends a definition.
func (ev *SettingsEvent) Add(def SettingsDefinition) {
	ev.Definitions = append(ev.Definitions, def)
}

// SettingsSchema asks every OnSettings handler, in priority order, for its
// settings definitions. additional is passed through untouched.
func (e *Engine) SettingsSchema(ctx context.Context, additional map[string]any) ([]SettingsDefinition, error) {
	if additional == nil {
		additional = map[string]any{}
	}
	ev := &SettingsEvent{Additional: additional}
	for _, fn := range e.settingsHooks.snapshot() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := fn(ctx, ev); err != nil {
			return nil, fmt.Errorf("settings schema: %w", err)
		}
	}
	return ev.Definitions, nil
}

// coreSettings contributes the "core" definition with the configured fonts.
func (e *Engine) coreSettings(_ context.Context, ev *SettingsEvent) error {
	fonts := e.doc.Settings.Fonts()
	items := make([][][]SettingsField, 0, len(fonts))
	for _, f := range fonts {
		items = append(items, [][]SettingsField{fontFields(f)})
	}

	ev.Add(SettingsDefinition{
		Name:  "core",
		Label: "Core",
		Tabs: []SettingsTab{{
			Label: "Font",
			Fields: [][]SettingsField{{{
				Label: "Fonts",
				Type:  "container",
				Fields: [][]SettingsField{{{
					Name:     "fonts",
					Type:     "list",
					Label:    "Fonts List",
					Template: [][]SettingsField{fontFields(Font{})},
					Entry:    map[string]any{"url": "", "name": ""},
					Items:    items,
				}}},
			}}},
		}},
	})
	return nil
}

func fontFields(f Font) []SettingsField {
	return []SettingsField{
		{Type: "asset", Name: "url", Label: "File", Value: f.URL},
		{Type: "title", Name: "name", Label: "Name", Value: f.Name},
	}
}
