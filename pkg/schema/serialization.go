package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseUnitMeta decodes a sidecar document.
func ParseUnitMeta(data []byte) (UnitMeta, error) {
	var meta UnitMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return UnitMeta{}, fmt.Errorf("failed to parse unit metadata: %w", err)
	}
	return meta, nil
}

// ParseUnitFile decodes a self-contained unit definition.
func ParseUnitFile(data []byte) (UnitFile, error) {
	var uf UnitFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return UnitFile{}, fmt.Errorf("failed to parse unit definition: %w", err)
	}
	return uf, nil
}

// ParseAliasesFile decodes an aliases.yaml document. A document without
// the aliases key yields an empty map.
func ParseAliasesFile(data []byte) (map[string]string, error) {
	var af AliasesFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}
	if af.Aliases == nil {
		return map[string]string{}, nil
	}
	return af.Aliases, nil
}

// ParseVariablesFile decodes a vars.yaml document. A document without the
// variables key yields an empty map.
func ParseVariablesFile(data []byte) (map[string]string, error) {
	var vf VariablesFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse variables: %w", err)
	}
	if vf.Variables == nil {
		return map[string]string{}, nil
	}
	return vf.Variables, nil
}
