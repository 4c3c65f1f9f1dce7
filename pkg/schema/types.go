package schema

import (
	"github.com/aretw0/sluice/pkg/domain"
)

// UnitMeta is the sidecar document that accompanies a unit source file.
// Every field is optional; absent fields keep the defaults derived from
// the source file itself (enabled, language from the extension).
type UnitMeta struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Enabled defaults to true when the field is absent, so sidecars only
	// need to exist to disable a unit or describe it.
	Enabled  *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Language string `yaml:"language,omitempty" json:"language,omitempty"`
}

// Apply overlays the sidecar metadata onto a unit built from its source
// file and returns the result.
func (m UnitMeta) Apply(u domain.Unit) domain.Unit {
	if m.Description != "" {
		u.Description = m.Description
	}
	if m.Enabled != nil {
		u.Enabled = *m.Enabled
	}
	if m.Language != "" {
		u.Language = domain.Language(m.Language)
	}
	return u
}

// UnitFile is a self-contained unit definition: source and metadata in one
// YAML document. Management surfaces accept it where shipping a source
// file plus sidecar would be awkward (HTTP admin bodies, `units add -f`).
type UnitFile struct {
	Name        string `yaml:"name" json:"name"`
	Source      string `yaml:"source" json:"source"`
	Language    string `yaml:"language,omitempty" json:"language,omitempty"`
	Enabled     *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Unit converts the document to its domain form. Enabled defaults to true.
func (f UnitFile) Unit() domain.Unit {
	enabled := true
	if f.Enabled != nil {
		enabled = *f.Enabled
	}
	return domain.Unit{
		Name:        f.Name,
		Source:      f.Source,
		Language:    domain.Language(f.Language),
		Enabled:     enabled,
		Description: f.Description,
	}
}

// AliasesFile is the aliases.yaml document: a flat name → target map.
type AliasesFile struct {
	Aliases map[string]string `yaml:"aliases" json:"aliases"`
}

// VariablesFile is the vars.yaml document: a flat name → value map.
type VariablesFile struct {
	Variables map[string]string `yaml:"variables" json:"variables"`
}
