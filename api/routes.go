package api

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Routes is the top-level schema of the routing config file (routes.yaml)
// read once at startup.
type Routes struct {
	Structure          string       `yaml:"structure"`
	PrefixParentFolder bool         `yaml:"prefixParentFolder"`
	PrefixRepoName     bool         `yaml:"prefixRepoName"`
	RepoName           string       `yaml:"repoName"`
	BranchRoute        string       `yaml:"branchRoute"`
	Branches           BranchList   `yaml:"branches"`
	Blacklist          []string     `yaml:"blacklist"`
	PullRequest        *PullRequest `yaml:"pullRequest"`
}

// PullRequest enables routing of pull request events.
type PullRequest struct {
	Route     string `yaml:"route"`
	Qualifier string `yaml:"qualifier"`
}

// Branch is one allowlisted branch and the label used to qualify
// pipeline names built from it. An empty label means the branch name.
type Branch struct {
	Name  string
	Label string
}

// BranchList keeps branches in file order. It accepts either a sequence
// whose items are a branch name or a single-key {branch: label} map:
//
//	branches:
//	  - master: prod
//	  - dev
//
// or an ordered mapping:
//
//	branches:
//	  master: prod
//	  dev: staging
type BranchList []Branch

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *BranchList) UnmarshalYAML(node *yaml.Node) error {
	var out BranchList

	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, Branch{Name: item.Value})
			case yaml.MappingNode:
				if len(item.Content) != 2 {
					return fmt.Errorf("line %d: branch entry must map exactly one branch to its label", item.Line)
				}
				br, err := pair(item.Content[0], item.Content[1])
				if err != nil {
					return err
				}
				out = append(out, br)
			default:
				return fmt.Errorf("line %d: branch entry must be a name or a {branch: label} map", item.Line)
			}
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			br, err := pair(node.Content[i], node.Content[i+1])
			if err != nil {
				return err
			}
			out = append(out, br)
		}

	default:
		return fmt.Errorf("line %d: branches must be a list or a mapping", node.Line)
	}

	*b = out
	return nil
}

func pair(key, value *yaml.Node) (Branch, error) {
	if key.Kind != yaml.ScalarNode {
		return Branch{}, fmt.Errorf("line %d: branch name must be a string", key.Line)
	}
	if value.Kind != yaml.ScalarNode {
		return Branch{}, fmt.Errorf("line %d: label for branch %q must be a string", value.Line, key.Value)
	}
	label := value.Value
	if value.Tag == "!!null" {
		label = ""
	}
	return Branch{Name: key.Value, Label: label}, nil
}
