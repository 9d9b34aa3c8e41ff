package state

import (
	"strconv"
	"strings"
)

// Path addresses a location in a Value tree as a sequence of string
// segments. A segment that parses as a non-negative integer addresses a
// sequence element when the node being indexed is a sequence; against a
// mapping the same segment is just a key. The empty path addresses the
// root.
type Path []string

// ParsePath splits a JSON-Pointer-shaped string ("/a/b/0") into
// segments. Empty segments are skipped, so "/", "" and "//" all address
// the root.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	segs := make(Path, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) == 0 {
		return nil
	}
	return segs
}

// String renders the path back to its wire form. The root renders as "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	return "/" + strings.Join(p, "/")
}

// IsRoot reports whether the path addresses the root value.
func (p Path) IsRoot() bool { return len(p) == 0 }

// index interprets seg as a sequence index. ok is false when seg is not
// a non-negative integer.
func index(seg string) (int, bool) {
	// Reject "+3", " 3", "03" is accepted per strconv; leading zeros are
	// harmless for addressing.
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
