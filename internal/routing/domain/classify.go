package domain

import "strings"

// Classification is the outcome of classifying a batch of changed paths.
type Classification struct {
	Projects []ProjectIdentifier // deduplicated, first-seen order
	Invalid  []*InvalidPathError // dropped paths, one entry each
}

// Classify derives the projects touched by paths under the given layout.
//
// A path is a list of directories followed by a file name. split and
// combined use the first directory, nested the first two, full the second
// and third. Paths with too few directories, paths under a hidden
// top-level entry (.github/, .gitignore) and invalid paths yield nothing.
func Classify(paths []string, mode ProjectStructureMode) Classification {
	var c Classification
	seen := make(map[ProjectIdentifier]struct{})

	for _, p := range paths {
		clean, perr := normalizePath(p)
		if perr != nil {
			c.Invalid = append(c.Invalid, perr)
			continue
		}

		segments := strings.Split(clean, "/")
		if strings.HasPrefix(segments[0], ".") {
			continue
		}

		id, ok := identify(segments[:len(segments)-1], mode)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c.Projects = append(c.Projects, id)
	}

	return c
}

func identify(dirs []string, mode ProjectStructureMode) (ProjectIdentifier, bool) {
	switch mode {
	case StructureSplit, StructureCombined:
		if len(dirs) < 1 {
			return ProjectIdentifier{}, false
		}
		return ProjectIdentifier{Name: dirs[0]}, true
	case StructureNested:
		if len(dirs) < 2 {
			return ProjectIdentifier{}, false
		}
		return ProjectIdentifier{Parent: dirs[0], Name: dirs[1]}, true
	case StructureFull:
		if len(dirs) < 3 {
			return ProjectIdentifier{}, false
		}
		return ProjectIdentifier{Group: dirs[0], Parent: dirs[1], Name: dirs[2]}, true
	}
	return ProjectIdentifier{}, false
}
