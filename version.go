package sluice

import _ "embed"

// Version is the library release, read from the VERSION file at the module
// root. The raw embed keeps the file's trailing newline, so display sites
// trim it.
//
//go:embed VERSION
var Version string
