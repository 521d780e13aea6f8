// Package namediff renders unified diffs of resolved pipeline names.
package namediff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Adapter implements ports.NameDiffPort with a unified diff, one pipeline
// name per line.
type Adapter struct{}

// New creates a new name diff adapter.
func New() *Adapter {
	return &Adapter{}
}

// ComputeDiff returns a unified diff of the two name lists, or "" when
// they are identical.
func (a *Adapter) ComputeDiff(oldName string, oldNames []string, newName string, newNames []string) string {
	ud := difflib.UnifiedDiff{
		A:        lines(oldNames),
		B:        lines(newNames),
		FromFile: oldName,
		ToFile:   newName,
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("error computing diff: %s", err)
	}
	return strings.TrimSpace(text)
}

func lines(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + "\n"
	}
	return out
}
