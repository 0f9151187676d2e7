// Package langchain adapts chatmemory stores to the memory contracts of
// github.com/tmc/langchaingo: History implements schema.ChatMessageHistory
// for one session and Memory implements schema.Memory on top of a
// memory.BufferMemory.
package langchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/memory"
)

// ErrUnsupportedMessage is returned for langchaingo message types other than
// human and AI messages.
var ErrUnsupportedMessage = errors.New("langchain: unsupported message type")

// ToChatMessages converts messages into langchaingo chat messages. Nil
// messages are skipped.
func ToChatMessages(msgs []core.Message) []llms.ChatMessage {
	out := make([]llms.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if cm := ToChatMessage(m); cm != nil {
			out = append(out, cm)
		}
	}
	return out
}

// ToChatMessage converts a single message. It returns nil for a nil message.
func ToChatMessage(m core.Message) llms.ChatMessage {
	switch v := m.(type) {
	case core.HumanMessage:
		return llms.HumanChatMessage{Content: v.Content}
	case core.AIMessage:
		return llms.AIChatMessage{Content: v.Content}
	default:
		return nil
	}
}

// FromChatMessage converts a langchaingo message into a ChatTurn.
func FromChatMessage(m llms.ChatMessage) (core.ChatTurn, error) {
	switch m.GetType() {
	case llms.ChatMessageTypeHuman:
		return core.HumanTurn(m.GetContent()), nil
	case llms.ChatMessageTypeAI:
		return core.AITurn(m.GetContent()), nil
	default:
		return core.ChatTurn{}, fmt.Errorf("%w: %s", ErrUnsupportedMessage, m.GetType())
	}
}

// HistoryOptions configure a History.
type HistoryOptions struct {
	// SessionID selects the session; empty uses the store default.
	SessionID string
	// WindowSize limits Messages to the most recent turns.
	WindowSize int
}

// History is a schema.ChatMessageHistory bound to one session of a
// core.MessageStore.
type History struct {
	store core.MessageStore
	opts  HistoryOptions
}

// NewHistory creates a History over store.
func NewHistory(store core.MessageStore, optFns ...func(o *HistoryOptions)) *History {
	opts := HistoryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &History{store: store, opts: opts}
}

func (h *History) callOptions() []func(o *core.CallOptions) {
	return []func(o *core.CallOptions){
		core.WithSessionID(h.opts.SessionID),
		core.WithWindowSize(h.opts.WindowSize),
	}
}

// AddMessage appends a human or AI message.
func (h *History) AddMessage(ctx context.Context, message llms.ChatMessage) error {
	turn, err := FromChatMessage(message)
	if err != nil {
		return err
	}
	return h.store.AddMessages(ctx, []core.ChatTurn{turn}, h.callOptions()...)
}

// AddUserMessage appends a human message.
func (h *History) AddUserMessage(ctx context.Context, message string) error {
	return h.store.AddMessages(ctx, []core.ChatTurn{core.HumanTurn(message)}, h.callOptions()...)
}

// AddAIMessage appends an AI message.
func (h *History) AddAIMessage(ctx context.Context, message string) error {
	return h.store.AddMessages(ctx, []core.ChatTurn{core.AITurn(message)}, h.callOptions()...)
}

// Clear deletes the session.
func (h *History) Clear(ctx context.Context) error {
	return h.store.ClearMessages(ctx, h.callOptions()...)
}

// Messages returns the session history in chronological order.
func (h *History) Messages(ctx context.Context) ([]llms.ChatMessage, error) {
	msgs, err := h.store.GetMessages(ctx, h.callOptions()...)
	if err != nil {
		return nil, err
	}
	return ToChatMessages(msgs), nil
}

// SetMessages replaces the session history. Messages are validated before
// the session is cleared; they are then appended one by one.
func (h *History) SetMessages(ctx context.Context, messages []llms.ChatMessage) error {
	turns := make([]core.ChatTurn, 0, len(messages))
	for _, m := range messages {
		turn, err := FromChatMessage(m)
		if err != nil {
			return err
		}
		turns = append(turns, turn)
	}
	if err := h.Clear(ctx); err != nil {
		return err
	}
	for _, turn := range turns {
		if err := h.store.AddMessages(ctx, []core.ChatTurn{turn}, h.callOptions()...); err != nil {
			return err
		}
	}
	return nil
}

// Memory exposes a memory.BufferMemory as a schema.Memory. With
// ReturnMessages set the memory variable holds []llms.ChatMessage, otherwise
// the formatted buffer string.
type Memory struct {
	buf *memory.BufferMemory
}

// NewMemory wraps buf.
func NewMemory(buf *memory.BufferMemory) *Memory { return &Memory{buf: buf} }

// GetMemoryKey returns the memory variable name.
func (m *Memory) GetMemoryKey(context.Context) string { return m.buf.MemoryKey() }

// MemoryVariables lists the variables LoadMemoryVariables returns.
func (m *Memory) MemoryVariables(context.Context) []string { return m.buf.MemoryVariables() }

// LoadMemoryVariables returns the session history under the memory key.
func (m *Memory) LoadMemoryVariables(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	vars, err := m.buf.LoadMemoryVariables(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if msgs, ok := vars[m.buf.MemoryKey()].([]core.Message); ok {
		vars[m.buf.MemoryKey()] = ToChatMessages(msgs)
	}
	return vars, nil
}

// SaveContext stores one input/output exchange.
func (m *Memory) SaveContext(ctx context.Context, inputs, outputs map[string]any) error {
	return m.buf.SaveContext(ctx, inputs, outputs)
}

// Clear clears the default session.
func (m *Memory) Clear(ctx context.Context) error { return m.buf.Clear(ctx) }
