package decision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/ordvet/internal/llm"
)

// scriptedChat answers each prompt from a script keyed by a prompt
// substring and records the full conversation.
type scriptedChat struct {
	script   map[string]string
	fallback string
	err      error
	history  []llm.Message
}

func (c *scriptedChat) Chat(ctx context.Context, content string) (string, error) {
	c.history = append(c.history, llm.Message{Role: llm.RoleUser, Content: content})
	if c.err != nil {
		return "", c.err
	}
	response := c.fallback
	for needle, reply := range c.script {
		if strings.Contains(content, needle) {
			response = reply
			break
		}
	}
	c.history = append(c.history, llm.Message{Role: llm.RoleAssistant, Content: response})
	return response, nil
}

func (c *scriptedChat) Messages() []llm.Message {
	return append([]llm.Message(nil), c.history...)
}

func TestGraph_UnconditionalTwoNodeTraversal(t *testing.T) {
	chat := &scriptedChat{script: map[string]string{
		"first":  "moving on",
		"second": "final answer",
	}}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "first question"})
	g.AddNode("leaf", &Node{Prompt: "second question"})
	g.AddEdge("init", Edge{To: "leaf"})

	out, err := g.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "final answer" {
		t.Errorf("expected leaf response as final output, got %q", out)
	}
	if len(chat.history) != 4 {
		t.Errorf("expected 2 turns (4 messages), got %d", len(chat.history))
	}
}

func TestGraph_AttrSubstitution(t *testing.T) {
	chat := &scriptedChat{fallback: "ok"}
	g := NewGraph(chat, map[string]string{"tech": "wind energy systems"})
	g.AddNode("init", &Node{Prompt: "Does this text regulate {tech}?"})

	if _, err := g.Run(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := chat.history[0].Content
	if !strings.Contains(sent, "wind energy systems") || strings.Contains(sent, "{tech}") {
		t.Errorf("prompt not formatted with graph attrs: %q", sent)
	}
}

func TestGraph_FirstMatchWins(t *testing.T) {
	// The unconditional edge comes first, so it must win even though the
	// later condition would also be true.
	chat := &scriptedChat{script: map[string]string{"pick": "yes"}, fallback: "done"}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "pick a branch"})
	g.AddNode("first", &Node{Prompt: "first branch prompt"})
	g.AddNode("second", &Node{Prompt: "second branch prompt"})
	g.AddEdge("init", Edge{To: "first"})
	g.AddEdge("init", Edge{To: "second", Condition: func(r string) bool { return strings.Contains(r, "yes") }})

	next, err := g.CallNode(context.Background(), "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != "first" {
		t.Errorf("expected unconditional edge to win, got %q", next)
	}
}

func TestGraph_ConditionOrderRespected(t *testing.T) {
	chat := &scriptedChat{fallback: "both conditions hold"}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "question"})
	g.AddNode("a", &Node{Prompt: "a"})
	g.AddNode("b", &Node{Prompt: "b"})
	g.AddEdge("init", Edge{To: "a", Condition: func(r string) bool { return strings.Contains(r, "conditions") }})
	g.AddEdge("init", Edge{To: "b", Condition: func(r string) bool { return strings.Contains(r, "both") }})

	next, err := g.CallNode(context.Background(), "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != "a" {
		t.Errorf("expected first satisfied edge to win, got %q", next)
	}
}

func TestGraph_NoEdgeSatisfiedNamesNode(t *testing.T) {
	chat := &scriptedChat{fallback: "unhelpful response"}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "question"})
	g.AddNode("a", &Node{Prompt: "a"})
	g.AddNode("b", &Node{Prompt: "b"})
	g.AddEdge("init", Edge{To: "a", Condition: func(r string) bool { return strings.Contains(r, "yes") }})
	g.AddEdge("init", Edge{To: "b", Condition: func(r string) bool { return strings.Contains(r, "no way") }})

	_, err := g.Run(context.Background(), "")
	if err == nil {
		t.Fatal("expected traversal error when no condition matches")
	}
	var terr *TraversalError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TraversalError, got %T: %v", err, err)
	}
	if terr.Node != "init" {
		t.Errorf("expected failing node init, got %q", terr.Node)
	}
	if !strings.Contains(err.Error(), "init") {
		t.Errorf("error should name the node: %v", err)
	}
	if terr.LastMessage != "unhelpful response" {
		t.Errorf("expected last LLM message in error, got %q", terr.LastMessage)
	}
	if len(terr.Transcript) != 2 {
		t.Errorf("expected full transcript, got %d messages", len(terr.Transcript))
	}
}

func TestGraph_AmbiguousUnconditionalEdges(t *testing.T) {
	chat := &scriptedChat{fallback: "anything"}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "question"})
	g.AddNode("a", &Node{Prompt: "a"})
	g.AddNode("b", &Node{Prompt: "b"})
	g.AddEdge("init", Edge{To: "a"})
	g.AddEdge("init", Edge{To: "b"})

	_, err := g.CallNode(context.Background(), "init")
	if err == nil {
		t.Fatal("expected configuration error for multiple unconditional edges")
	}
	if !strings.Contains(err.Error(), "init") || !strings.Contains(err.Error(), "a, b") {
		t.Errorf("error should name node and edges: %v", err)
	}
}

func TestGraph_ChatErrorWrapsTranscript(t *testing.T) {
	cause := errors.New("connection reset")
	chat := &scriptedChat{err: cause}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "question"})

	_, err := g.Run(context.Background(), "")
	var terr *TraversalError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TraversalError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive errors.Is")
	}
}

func TestGraph_CallbackReceivesGraphAndNode(t *testing.T) {
	chat := &scriptedChat{fallback: "observed"}
	var captured, firedAt string
	var fromGraph *Graph
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "q", Callback: func(r string, cg *Graph, node string) {
		captured = r
		fromGraph = cg
		firedAt = node
	}})

	if _, err := g.Run(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != "observed" {
		t.Errorf("callback did not receive response, got %q", captured)
	}
	if firedAt != "init" {
		t.Errorf("callback did not receive node name, got %q", firedAt)
	}
	if fromGraph != g {
		t.Error("callback did not receive the owning graph")
	}
}

func TestGraph_RunFromCustomStart(t *testing.T) {
	chat := &scriptedChat{script: map[string]string{
		"alternate": "alternate answer",
	}}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "never asked"})
	g.AddNode("other", &Node{Prompt: "alternate question"})

	out, err := g.Run(context.Background(), "other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "alternate answer" {
		t.Errorf("expected traversal from custom start node, got %q", out)
	}
	if len(chat.history) != 2 {
		t.Errorf("expected a single turn, got %d messages", len(chat.history))
	}
}

func TestGraph_HistoryRecordsVisitedNodes(t *testing.T) {
	chat := &scriptedChat{script: map[string]string{
		"first":  "moving on",
		"second": "final answer",
	}}
	g := NewGraph(chat, nil)
	g.AddNode("init", &Node{Prompt: "first question"})
	g.AddNode("leaf", &Node{Prompt: "second question"})
	g.AddEdge("init", Edge{To: "leaf"})

	if _, err := g.Run(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := g.History()
	if len(got) != 2 || got[0] != "init" || got[1] != "leaf" {
		t.Errorf("expected history [init leaf], got %v", got)
	}
}

func TestGraph_UnknownNode(t *testing.T) {
	g := NewGraph(&scriptedChat{}, nil)
	if _, err := g.CallNode(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown node")
	}
}
