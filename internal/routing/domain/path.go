package domain

import "strings"

// ProjectIdentifier names a project touched by a push: a single folder,
// or a (Parent, Name) pair for nested layouts. Group is the grouping
// folder of the full layout; it takes part in blacklisting, not naming.
type ProjectIdentifier struct {
	Group  string
	Parent string
	Name   string
}

// String returns the folders of the project joined with "/".
func (id ProjectIdentifier) String() string {
	s := id.Name
	if id.Parent != "" {
		s = id.Parent + "/" + s
	}
	if id.Group != "" {
		s = id.Group + "/" + s
	}
	return s
}

// normalizePath cleans a repository-relative changed path.
// "./a//b/" becomes "a/b". Empty, absolute, NUL-containing and
// parent-traversing paths are rejected.
func normalizePath(p string) (string, *InvalidPathError) {
	switch {
	case strings.TrimSpace(p) == "":
		return "", &InvalidPathError{Path: p, Reason: "empty path"}
	case strings.ContainsRune(p, 0):
		return "", &InvalidPathError{Path: p, Reason: "contains NUL byte"}
	case strings.HasPrefix(p, "/"):
		return "", &InvalidPathError{Path: p, Reason: "absolute path"}
	}

	raw := strings.Split(p, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		switch s {
		case "", ".":
			continue
		case "..":
			return "", &InvalidPathError{Path: p, Reason: "parent directory segment"}
		}
		segments = append(segments, s)
	}
	if len(segments) == 0 {
		return "", &InvalidPathError{Path: p, Reason: "no path segments"}
	}
	return strings.Join(segments, "/"), nil
}
