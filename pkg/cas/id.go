package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// ContentID is a canonical content identifier: the SHA-256 digest of the
// payload, hex-encoded, always 64 lowercase characters.
type ContentID string

// Marker is the optional prefix a path segment may carry in front of a
// content identifier. Normalize strips it.
const Marker = "sha256:"

// hexLen is the length of a hex-encoded SHA-256 digest.
const hexLen = sha256.Size * 2

// ErrInvalidRef is returned when a segment does not carry a well-formed
// content identifier.
var ErrInvalidRef = errors.New("invalid content identifier")

// Generate derives the canonical identifier for a payload. The derivation is
// pure and deterministic: same bytes, same identifier, on every host.
func Generate(data []byte) ContentID {
	sum := sha256.Sum256(data)
	return ContentID(hex.EncodeToString(sum[:]))
}

// Valid reports whether s is a canonical identifier: exactly 64 hex
// characters, lowercase.
func Valid(s string) bool {
	if len(s) != hexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IsRef reports whether a path segment syntactically names stored content.
// The segment may carry the optional leading Marker and a trailing type
// extension; both are tolerated here and stripped by Normalize. Uppercase
// hex is accepted on input and canonicalized away.
func IsRef(segment string) bool {
	_, err := Normalize(segment)
	return err == nil
}

// Normalize extracts the canonical identifier from a segment that may carry
// a leading Marker, a trailing type extension, or uppercase hex. Returns
// ErrInvalidRef when the segment is not a content reference at all.
func Normalize(segment string) (ContentID, error) {
	s := strings.TrimPrefix(segment, Marker)
	if base, ext := domain.SplitSuffix(s); ext != "" {
		s = base
	}
	s = strings.ToLower(s)
	if !Valid(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, segment)
	}
	return ContentID(s), nil
}
