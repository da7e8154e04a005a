package testutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/incube-ai/incube-go/core"
)

// FrameBuilder provides a fluent helper for constructing stream frames in
// tests. Example:
//
//	f := NewFrameBuilder(core.EventAgentComplete).Agent(core.AgentLyra).Content("done").Build()
//
// Chain only the parts you need; fields left unset are omitted from the
// payload.
type FrameBuilder struct {
	event  string
	fields map[string]any
}

// NewFrameBuilder creates a builder for the given event name.
func NewFrameBuilder(event string) *FrameBuilder {
	return &FrameBuilder{event: event, fields: make(map[string]any)}
}

// Agent sets the agent field (chainable).
func (b *FrameBuilder) Agent(a core.AgentName) *FrameBuilder { b.fields["agent"] = a; return b }

// Chunk sets the chunk field (chainable).
func (b *FrameBuilder) Chunk(text string) *FrameBuilder { b.fields["chunk"] = text; return b }

// Content sets the content field (chainable).
func (b *FrameBuilder) Content(text string) *FrameBuilder { b.fields["content"] = text; return b }

// Message sets the message field (chainable).
func (b *FrameBuilder) Message(text string) *FrameBuilder { b.fields["message"] = text; return b }

// Error sets the error field (chainable).
func (b *FrameBuilder) Error(text string) *FrameBuilder { b.fields["error"] = text; return b }

// ErrorType sets the error_type field (chainable).
func (b *FrameBuilder) ErrorType(code string) *FrameBuilder { b.fields["error_type"] = code; return b }

// Usage sets the token accounting fields (chainable).
func (b *FrameBuilder) Usage(inputTokens, outputTokens int, costUSD float64) *FrameBuilder {
	b.fields["input_tokens"] = inputTokens
	b.fields["output_tokens"] = outputTokens
	b.fields["cost_usd"] = costUSD
	return b
}

// Challenge sets the challenge fields (chainable).
func (b *FrameBuilder) Challenge(severity core.Severity, text string, targets ...core.AgentName) *FrameBuilder {
	b.fields["severity"] = severity
	b.fields["challenge_text"] = text
	b.fields["targeted_agents"] = targets
	return b
}

// Response sets the response field (chainable).
func (b *FrameBuilder) Response(text string) *FrameBuilder { b.fields["response"] = text; return b }

// Verdict sets the resolution fields (chainable).
func (b *FrameBuilder) Verdict(res core.Resolution, text string) *FrameBuilder {
	b.fields["resolution"] = res
	b.fields["resolution_text"] = text
	return b
}

// Field sets an arbitrary payload field (chainable).
func (b *FrameBuilder) Field(key string, value any) *FrameBuilder { b.fields[key] = value; return b }

// Build constructs the core.Frame value.
func (b *FrameBuilder) Build() core.Frame {
	data, err := json.Marshal(b.fields)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal frame payload: %v", err))
	}
	return core.Frame{Event: b.event, Data: data}
}

// Wire renders the frame as its server-sent-events wire form, including the
// terminating blank line.
func (b *FrameBuilder) Wire() string {
	f := b.Build()
	return fmt.Sprintf("event: %s\ndata: %s\n\n", f.Event, f.Data)
}

// Script joins builders into one stream body for a scripted test server.
func Script(builders ...*FrameBuilder) string {
	var sb strings.Builder
	for _, b := range builders {
		sb.WriteString(b.Wire())
	}
	return sb.String()
}
