package testutil

import (
	"fmt"

	"github.com/hupe1980/chatmemory/core"
)

// ConversationBuilder provides a fluent helper for building chat histories
// in tests.
// Example:
//
//	conv := NewConversationBuilder().Human("hi").AI("hello").Human("bye").Build()
type ConversationBuilder struct {
	turns []core.ChatTurn
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// Human appends a human turn (chainable).
func (b *ConversationBuilder) Human(text string) *ConversationBuilder {
	b.turns = append(b.turns, core.HumanTurn(text))
	return b
}

// AI appends an AI turn (chainable).
func (b *ConversationBuilder) AI(text string) *ConversationBuilder {
	b.turns = append(b.turns, core.AITurn(text))
	return b
}

// Alternating appends n turns starting with a human turn, texts "turn-<i>" (chainable).
func (b *ConversationBuilder) Alternating(n int) *ConversationBuilder {
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("turn-%d", len(b.turns))
		if len(b.turns)%2 == 0 {
			b.Human(text)
		} else {
			b.AI(text)
		}
	}
	return b
}

// Build returns a copy of the accumulated turns.
func (b *ConversationBuilder) Build() []core.ChatTurn {
	out := make([]core.ChatTurn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Messages returns the accumulated turns as core.Message values.
func (b *ConversationBuilder) Messages() []core.Message {
	return Messages(b.turns...)
}

// Messages converts turns into messages, panicking on unknown roles.
func Messages(turns ...core.ChatTurn) []core.Message {
	out := make([]core.Message, 0, len(turns))
	for _, t := range turns {
		m, err := t.Message()
		if err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	return out
}

// Contents returns the text of each message in order.
func Contents(msgs []core.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.GetContent())
	}
	return out
}

// RawRecord returns the JSON list entry for a message, panicking on error.
func RawRecord(m core.Message) string {
	raw, err := core.EncodeMessage(m)
	if err != nil {
		panic(err)
	}
	return raw
}
