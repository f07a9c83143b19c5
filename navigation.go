package blogpodcast

import (
	"path"
	"strings"
)

// NormalizePath makes a document path comparable across platforms.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// FindNextPrev locates currentPath in an ordered blog listing and returns
// its neighbours, wrapping around at both ends. When a path appears more
// than once the last occurrence wins.
func FindNextPrev(docs []Document, currentPath string) (NextPrev, error) {
	want := NormalizePath(currentPath)
	idx := -1
	for i, d := range docs {
		if NormalizePath(d.VPath) == want {
			idx = i
		}
	}
	if idx < 0 {
		return NextPrev{}, &DocumentNotFoundError{Path: currentPath}
	}
	prev := idx - 1
	if prev < 0 {
		prev = len(docs) - 1
	}
	next := idx + 1
	if next == len(docs) {
		next = 0
	}
	return NextPrev{Previous: docs[prev], Next: docs[next]}, nil
}
