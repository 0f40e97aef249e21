package decision

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/ordvet/internal/llm"
)

// graphSpec is the YAML shape of a prompt graph. Node and edge order in
// the file is evaluation order.
type graphSpec struct {
	Attrs map[string]string `yaml:"attrs"`
	Nodes []nodeSpec        `yaml:"nodes"`
}

type nodeSpec struct {
	Name   string     `yaml:"name"`
	Prompt string     `yaml:"prompt"`
	Edges  []edgeSpec `yaml:"edges"`
}

// edgeSpec declares at most one condition kind. "contains" matches
// case-insensitively, "regex" compiles against the raw response, and
// "default: true" marks an unconditional edge.
type edgeSpec struct {
	To       string `yaml:"to"`
	Contains string `yaml:"contains"`
	Regex    string `yaml:"regex"`
	Default  bool   `yaml:"default"`
}

// LoadGraph reads a YAML prompt graph and binds it to a chat collaborator.
func LoadGraph(r io.Reader, chat llm.ChatCaller) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	var spec graphSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse graph yaml: %w", err)
	}
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("graph defines no nodes")
	}

	g := NewGraph(chat, spec.Attrs)
	for _, n := range spec.Nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("graph node missing a name")
		}
		if g.Node(n.Name) != nil {
			return nil, fmt.Errorf("duplicate graph node %q", n.Name)
		}
		g.AddNode(n.Name, &Node{Prompt: n.Prompt})
	}

	for _, n := range spec.Nodes {
		for i, e := range n.Edges {
			if e.To == "" {
				return nil, fmt.Errorf("node %q edge %d missing target", n.Name, i)
			}
			cond, err := buildCondition(e)
			if err != nil {
				return nil, fmt.Errorf("node %q edge %d: %w", n.Name, i, err)
			}
			g.AddEdge(n.Name, Edge{To: e.To, Condition: cond})
		}
	}
	return g, nil
}

func buildCondition(e edgeSpec) (func(string) bool, error) {
	kinds := 0
	if e.Contains != "" {
		kinds++
	}
	if e.Regex != "" {
		kinds++
	}
	if e.Default {
		kinds++
	}
	if kinds > 1 {
		return nil, fmt.Errorf("edge to %q declares more than one condition kind", e.To)
	}
	switch {
	case e.Contains != "":
		needle := strings.ToLower(e.Contains)
		return func(response string) bool {
			return strings.Contains(strings.ToLower(response), needle)
		}, nil
	case e.Regex != "":
		re, err := regexp.Compile(e.Regex)
		if err != nil {
			return nil, fmt.Errorf("bad regex %q: %w", e.Regex, err)
		}
		return func(response string) bool { return re.MatchString(response) }, nil
	default:
		// Unconditional, whether declared via "default: true" or by
		// omitting a condition entirely.
		return nil, nil
	}
}
