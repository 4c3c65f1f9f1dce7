package domain

import "strings"

// Kind identifies what a path segment resolved to during classification.
type Kind string

const (
	// KindUnknown marks a segment that has not been classified yet.
	KindUnknown Kind = ""
	// KindUnit marks a segment naming an enabled executable unit.
	KindUnit Kind = "unit"
	// KindContent marks a segment carrying a content identifier, either a
	// stored hash reference or an inline literal with a type suffix.
	KindContent Kind = "content"
	// KindAlias marks a segment naming an indirection to another target.
	KindAlias Kind = "alias"
	// KindVariable marks a segment naming a registered leaf value.
	KindVariable Kind = "variable"
	// KindLiteral marks an opaque segment passed through as raw input.
	KindLiteral Kind = "literal"
)

// Segment is one slash-delimited component of a request path, after
// percent-decoding. Classification fills in Kind; until then the segment is
// just decoded text.
type Segment struct {
	// Text is the percent-decoded segment text.
	Text string `json:"text"`
	// Index is the zero-based position of the segment in the original path,
	// counted left to right. Evaluation order runs right to left, so the
	// highest index evaluates first.
	Index int `json:"index"`
	// Kind is the classification outcome. Zero value means unclassified.
	Kind Kind `json:"kind,omitempty"`
}

// SplitSuffix splits a segment text into its base and trailing extension.
// An extension is only recognized when it follows the last dot and consists
// purely of ASCII letters; this keeps dotted values like "v1.2" opaque.
// The returned ext never includes the dot and is lowercased. When no
// extension is present, base is the full text and ext is empty.
func SplitSuffix(text string) (base, ext string) {
	i := strings.LastIndexByte(text, '.')
	if i < 0 || i == len(text)-1 {
		return text, ""
	}
	cand := text[i+1:]
	for _, r := range cand {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return text, ""
		}
	}
	return text[:i], strings.ToLower(cand)
}
