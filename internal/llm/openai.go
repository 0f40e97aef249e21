package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgallion1/ordvet/internal/queue"
)

// ServiceName is the registry key for the OpenAI slot queue.
const ServiceName = "openai"

// completer is the transport seam between the callers and the OpenAI API.
type completer interface {
	complete(ctx context.Context, messages []Message, jsonMode bool, usageLabel string) (string, error)
}

// Client calls the OpenAI chat completions API. It implements
// StructuredCaller and backs ChatSession. In-flight requests are bounded by
// the slot queue when one is supplied.
type Client struct {
	api   *openai.Client
	model string
	slots *queue.Queue
	stats *Stats
	log   *slog.Logger
}

func NewClient(apiKey, model string, slots *queue.Queue, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
		slots: slots,
		stats: NewStats(time.Hour),
		log:   log,
	}
}

// StatsTracker returns the rolling latency tracker for this client.
func (c *Client) StatsTracker() *Stats {
	return c.stats
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Call submits a system instruction and content for structured retrieval.
// The JSON-format instruction is appended to the system message when missing.
func (c *Client) Call(ctx context.Context, sysMsg, content, usageLabel string) (map[string]any, error) {
	messages := []Message{
		{Role: RoleSystem, Content: ensureJSONInstructions(sysMsg)},
		{Role: RoleUser, Content: content},
	}
	raw, err := c.complete(ctx, messages, true, usageLabel)
	if err != nil {
		return nil, err
	}
	return ResponseAsJSON(raw)
}

func (c *Client) complete(ctx context.Context, messages []Message, jsonMode bool, usageLabel string) (string, error) {
	if c.slots != nil {
		if err := c.slots.Acquire(ctx); err != nil {
			return "", fmt.Errorf("acquire %s slot: %w", ServiceName, err)
		}
		defer c.slots.Release()
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	c.stats.Record(usageLabel, time.Since(start), err != nil)
	if err != nil {
		return "", fmt.Errorf("openai chat completion (%s): %w", usageLabel, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion (%s): empty response", usageLabel)
	}

	c.log.Debug("llm call",
		"usage_label", usageLabel,
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Choices[0].Message.Content, nil
}

// ChatSession is a stateful conversation against a Client. Not safe for two
// concurrent traversals; each traversal owns its session.
type ChatSession struct {
	c          completer
	usageLabel string
	messages   []Message
}

// NewChatSession starts a conversation seeded with a system message.
func NewChatSession(c *Client, systemMessage string) *ChatSession {
	return newChatSession(c, systemMessage)
}

func newChatSession(c completer, systemMessage string) *ChatSession {
	return &ChatSession{
		c:          c,
		usageLabel: "chat",
		messages:   []Message{{Role: RoleSystem, Content: systemMessage}},
	}
}

// Chat sends one user turn and returns the assistant's reply. On transport
// failure the user turn is rolled back so history holds only completed
// exchanges.
func (s *ChatSession) Chat(ctx context.Context, content string) (string, error) {
	s.messages = append(s.messages, Message{Role: RoleUser, Content: content})

	response, err := s.c.complete(ctx, s.messages, false, s.usageLabel)
	if err != nil {
		s.messages = s.messages[:len(s.messages)-1]
		return "", err
	}

	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: response})
	return response, nil
}

// Messages returns a copy of the conversation so far.
func (s *ChatSession) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
