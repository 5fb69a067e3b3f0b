package repo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// indexSuffix matches one or more trailing same-name-sibling indexes, e.g. "[2]" or "[1][3]".
var indexSuffix = regexp.MustCompile(`(\[\d+\])+$`)

// lastIndex captures a single trailing index.
var lastIndex = regexp.MustCompile(`^(.*)\[(\d+)\]$`)

// NormalizeName returns the NFC form of a node or property name.
// Names are compared in NFC so visually identical names address the same node.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// StripIndexes removes every trailing same-name-sibling index from a segment.
func StripIndexes(segment string) string {
	return indexSuffix.ReplaceAllString(segment, "")
}

// ParseSegment splits a path segment into its name and 1-based index.
// A segment without an index has index 1.
func ParseSegment(segment string) (string, int, error) {
	m := lastIndex.FindStringSubmatch(segment)
	if m == nil {
		return segment, 1, nil
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil || idx < 1 {
		return "", 0, fmt.Errorf("invalid same-name-sibling index in %q", segment)
	}
	if m[1] == "" {
		return "", 0, fmt.Errorf("missing name in segment %q", segment)
	}
	return m[1], idx, nil
}

// FormatSegment renders a name and index as a path segment.
// Index 1 is implicit.
func FormatSegment(name string, index int) string {
	if index <= 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, index)
}

// ValidateName checks that name can be used as a node or property name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name is empty")
	case strings.Contains(name, "/"):
		return fmt.Errorf("name %q contains '/'", name)
	case indexSuffix.MatchString(name):
		return fmt.Errorf("name %q has an index suffix", name)
	}
	return nil
}

// TrimSlashes strips leading and trailing separators from a relative path.
func TrimSlashes(p string) string {
	return strings.Trim(p, "/")
}

// SplitPath returns the non-empty segments of p.
func SplitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Join appends a relative path to an absolute parent path.
func Join(parent, rel string) string {
	rel = TrimSlashes(rel)
	if rel == "" {
		return parent
	}
	if parent == RootPath || parent == "" {
		return RootPath + rel
	}
	return strings.TrimRight(parent, "/") + "/" + rel
}

// ParentPath returns the absolute path of p's parent. The root is its own parent.
func ParentPath(p string) string {
	p = strings.TrimRight(p, "/")
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return RootPath
	}
	return p[:i]
}

// LastSegment returns the final segment of p, or "" for the root.
func LastSegment(p string) string {
	segs := SplitPath(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
