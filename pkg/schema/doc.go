// Package schema defines the on-disk definition formats for units,
// aliases and variables, plus the validation rules registries apply
// before accepting a definition.
//
// Unit sources live in plain files named <name>.<ext>, where the
// extension selects the language. Metadata that cannot live in the
// source itself (description, the enabled flag, a language override)
// goes in a YAML sidecar or, for single-file definitions, a UnitFile
// document:
//
//	name: upper
//	language: python
//	enabled: true
//	description: Uppercase the input
//	source: |
//	  print(input.upper())
//
// Aliases and variables are flat YAML maps:
//
//	aliases:
//	  shout: upper
//	  home: render/index
//
//	variables:
//	  greeting: hello
//
// Validation failures are reported per field as ValidationError and
// aggregated, so a management surface can show every problem at once
// instead of just the first one found.
package schema
