package runtime

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
)

// parsePath splits a raw request path into ordered segments.
// Leading and trailing slashes are tolerated and duplicate slashes collapse,
// so "/a//b/" and "a/b" parse identically. Each segment is percent-decoded
// after splitting; a decoded segment may therefore contain slashes without
// acting as a delimiter.
func parsePath(path string) ([]domain.Segment, error) {
	if strings.Trim(path, "/") == "" {
		return nil, &domain.ParseError{Path: path, Reason: "no segments"}
	}

	parts := strings.Split(path, "/")
	segs := make([]domain.Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, &domain.ParseError{Path: path, Reason: fmt.Sprintf("segment %q: %v", part, err)}
		}
		segs = append(segs, domain.Segment{
			Text:  decoded,
			Index: len(segs),
		})
	}
	return segs, nil
}
