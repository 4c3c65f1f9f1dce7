package dsl

import (
	"net/url"
	"strings"

	"github.com/aretw0/sluice/pkg/cas"
)

// PathBuilder assembles an evaluable path string, escaping each segment
// so payloads and source can carry slashes, percent signs and whitespace
// safely. Segments are appended in path order: leftmost first, which is
// the last stage to run.
type PathBuilder struct {
	segments []string
}

// Path starts an empty path. An empty builder renders "/", which no
// evaluation accepts; append at least one segment.
func Path() *PathBuilder {
	return &PathBuilder{}
}

// Seg appends a name segment: a unit, alias, variable, or opaque
// literal. Avoid trailing dot-extensions here; text ending in a dot
// plus letters is classified by that extension, not looked up by name.
func (p *PathBuilder) Seg(text string) *PathBuilder {
	p.segments = append(p.segments, url.PathEscape(text))
	return p
}

// Ref appends a stored content reference.
func (p *PathBuilder) Ref(id cas.ContentID) *PathBuilder {
	p.segments = append(p.segments, string(id))
	return p
}

// Text appends an inline text payload.
func (p *PathBuilder) Text(payload string) *PathBuilder {
	return p.Data(payload, "txt")
}

// Data appends an inline payload with an explicit data extension. The
// extension must name a recognized data format (txt, json, csv, md,
// html, xml, yaml); anything else fails evaluation as unrecognized.
func (p *PathBuilder) Data(payload, ext string) *PathBuilder {
	p.segments = append(p.segments, url.PathEscape(payload+"."+ext))
	return p
}

// Python appends inline Python source.
func (p *PathBuilder) Python(source string) *PathBuilder {
	return p.code(source, "py")
}

// JavaScript appends inline JavaScript source.
func (p *PathBuilder) JavaScript(source string) *PathBuilder {
	return p.code(source, "js")
}

// Lua appends inline Lua source, run by the embedded interpreter.
func (p *PathBuilder) Lua(source string) *PathBuilder {
	return p.code(source, "lua")
}

// Shell appends inline shell source.
func (p *PathBuilder) Shell(source string) *PathBuilder {
	return p.code(source, "sh")
}

func (p *PathBuilder) code(source, ext string) *PathBuilder {
	p.segments = append(p.segments, url.PathEscape(source+"."+ext))
	return p
}

// String renders the path with a leading slash.
func (p *PathBuilder) String() string {
	return "/" + strings.Join(p.segments, "/")
}
