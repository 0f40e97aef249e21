// Package decision drives multi-turn LLM conversations as a walk over a
// directed graph of prompts. Each node holds a prompt template; each edge
// optionally holds a predicate over the LLM's response text that selects
// the next node.
package decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/ordvet/internal/llm"
)

// StartNode is the conventional name of the node a traversal begins at.
const StartNode = "init"

// Edge is a transition to another node. A nil Condition makes the edge
// unconditional: it is taken as soon as it is reached in edge order.
type Edge struct {
	To        string
	Condition func(response string) bool
}

// Node holds a prompt template. Callback, when set, runs after the LLM
// responds at this node and before edge selection; it receives the graph
// and the name of the node that fired it.
type Node struct {
	Prompt   string
	Callback func(response string, g *Graph, node string)
}

// Graph is a prompt graph. Edges per node keep insertion order, and that
// order is the evaluation order during traversal: the first edge whose
// condition is nil or true wins.
type Graph struct {
	Chat  llm.ChatCaller
	Attrs map[string]string

	nodes   map[string]*Node
	edges   map[string][]Edge
	order   []string
	history []string
}

// NewGraph returns an empty graph bound to a chat collaborator. One graph
// must not be traversed concurrently: conversation history lives in the
// collaborator.
func NewGraph(chat llm.ChatCaller, attrs map[string]string) *Graph {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Graph{
		Chat:  chat,
		Attrs: attrs,
		nodes: make(map[string]*Node),
		edges: make(map[string][]Edge),
	}
}

// AddNode registers a node. Re-adding a name replaces its prompt but keeps
// its edges.
func (g *Graph) AddNode(name string, node *Node) {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.nodes[name] = node
}

// AddEdge appends an edge to from's ordered successor list.
func (g *Graph) AddEdge(from string, edge Edge) {
	g.edges[from] = append(g.edges[from], edge)
}

// Node returns the named node, or nil.
func (g *Graph) Node(name string) *Node { return g.nodes[name] }

// Edges returns from's successors in evaluation order.
func (g *Graph) Edges(from string) []Edge { return g.edges[from] }

// NodeNames returns node names in insertion order.
func (g *Graph) NodeNames() []string { return append([]string(nil), g.order...) }

// History returns the nodes visited by the most recent Run, in order.
func (g *Graph) History() []string { return append([]string(nil), g.history...) }

// TraversalError wraps a failure during graph traversal with the last LLM
// message and the full conversation transcript for diagnosis.
type TraversalError struct {
	Node        string
	LastMessage string
	Transcript  []llm.Message
	Err         error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("decision tree traversal failed at node %q: %v (last message: %q)",
		e.Node, e.Err, e.LastMessage)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// CallNode executes one traversal step at the named node: format the
// prompt with the graph attributes, submit it as a chat turn, then pick
// the next node from the edges in order. For a terminal node (no outgoing
// edges) the LLM's response text is returned as the final output.
func (g *Graph) CallNode(ctx context.Context, name string) (string, error) {
	node := g.nodes[name]
	if node == nil {
		return "", fmt.Errorf("node %q not in graph", name)
	}

	prompt := node.Prompt
	for k, v := range g.Attrs {
		prompt = strings.ReplaceAll(prompt, "{"+k+"}", v)
	}

	response, err := g.Chat.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat at node %q: %w", name, err)
	}
	if node.Callback != nil {
		node.Callback(response, g, name)
	}

	edges := g.edges[name]
	if len(edges) == 0 {
		return response, nil
	}
	if len(edges) > 1 && allUnconditional(edges) {
		return "", fmt.Errorf("node %q has %d outgoing edges (%s) and none carries a condition",
			name, len(edges), edgeTargets(edges))
	}
	for _, edge := range edges {
		if edge.Condition == nil || edge.Condition(response) {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("no edge condition satisfied at node %q (edges: %s) for response %q",
		name, edgeTargets(edges), response)
}

// Run traverses the graph from the named start node ("" means StartNode).
// A step result naming a graph node continues traversal there; anything
// else is the final LLM output. Any step failure aborts the traversal
// wrapped in a *TraversalError.
func (g *Graph) Run(ctx context.Context, start string) (string, error) {
	if start == "" {
		start = StartNode
	}
	current := start
	g.history = g.history[:0]
	for {
		g.history = append(g.history, current)
		out, err := g.CallNode(ctx, current)
		if err != nil {
			return "", &TraversalError{
				Node:        current,
				LastMessage: lastMessageContent(g.Chat.Messages()),
				Transcript:  g.Chat.Messages(),
				Err:         err,
			}
		}
		if _, isNode := g.nodes[out]; !isNode {
			return out, nil
		}
		current = out
	}
}

func allUnconditional(edges []Edge) bool {
	for _, e := range edges {
		if e.Condition != nil {
			return false
		}
	}
	return true
}

func edgeTargets(edges []Edge) string {
	targets := make([]string, len(edges))
	for i, e := range edges {
		targets[i] = e.To
	}
	return strings.Join(targets, ", ")
}

func lastMessageContent(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}
