package langchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/memory"
)

// Interface compliance (compile-time assertions)
var (
	_ schema.ChatMessageHistory = (*History)(nil)
	_ schema.Memory             = (*Memory)(nil)
)

func newStore(t *testing.T) *memory.SessionMessageStore {
	t.Helper()
	s, err := memory.NewSessionMessageStore(memory.NewInMemoryListStore(), func(o *memory.SessionStoreOptions) {
		o.SessionID = "default"
	})
	require.NoError(t, err)
	return s
}

func TestHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(newStore(t), func(o *HistoryOptions) { o.SessionID = "conv-1" })

	require.NoError(t, h.AddUserMessage(ctx, "hi"))
	require.NoError(t, h.AddAIMessage(ctx, "hello"))
	require.NoError(t, h.AddMessage(ctx, llms.HumanChatMessage{Content: "bye"}))

	msgs, err := h.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []llms.ChatMessage{
		llms.HumanChatMessage{Content: "hi"},
		llms.AIChatMessage{Content: "hello"},
		llms.HumanChatMessage{Content: "bye"},
	}, msgs)

	require.NoError(t, h.Clear(ctx))
	msgs, err = h.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHistory_Window(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	h := NewHistory(store, func(o *HistoryOptions) { o.WindowSize = 1 })
	require.NoError(t, h.AddUserMessage(ctx, "hi"))
	require.NoError(t, h.AddAIMessage(ctx, "hello"))

	msgs, err := h.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []llms.ChatMessage{llms.AIChatMessage{Content: "hello"}}, msgs)

	all, err := store.GetMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "history writes to the store default session")
}

func TestHistory_SetMessages(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(newStore(t))
	require.NoError(t, h.AddUserMessage(ctx, "old"))

	err := h.SetMessages(ctx, []llms.ChatMessage{llms.SystemChatMessage{Content: "sys"}})
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
	msgs, err := h.Messages(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "invalid input leaves history untouched")

	require.NoError(t, h.SetMessages(ctx, []llms.ChatMessage{
		llms.AIChatMessage{Content: "a"},
		llms.AIChatMessage{Content: "b"},
		llms.HumanChatMessage{Content: "c"},
	}))
	msgs, err = h.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []llms.ChatMessage{
		llms.AIChatMessage{Content: "a"},
		llms.AIChatMessage{Content: "b"},
		llms.HumanChatMessage{Content: "c"},
	}, msgs)
}

func TestHistory_AddMessageUnsupported(t *testing.T) {
	h := NewHistory(newStore(t))
	err := h.AddMessage(context.Background(), llms.SystemChatMessage{Content: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestMemory_LoadAndSave(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	buf, err := memory.NewBufferMemory(store, func(o *memory.BufferOptions) { o.ReturnMessages = true })
	require.NoError(t, err)
	mem := NewMemory(buf)
	assert.Equal(t, "history", mem.GetMemoryKey(ctx))
	assert.Equal(t, []string{"history"}, mem.MemoryVariables(ctx))

	require.NoError(t, mem.SaveContext(ctx, map[string]any{"input": "hi"}, map[string]any{"text": "hello"}))
	vars, err := mem.LoadMemoryVariables(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []llms.ChatMessage{
		llms.HumanChatMessage{Content: "hi"},
		llms.AIChatMessage{Content: "hello"},
	}, vars["history"])

	textBuf, err := memory.NewBufferMemory(store)
	require.NoError(t, err)
	vars, err = NewMemory(textBuf).LoadMemoryVariables(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Human: hi\nAI: hello", vars["history"])

	require.NoError(t, mem.Clear(ctx))
	vars, err = mem.LoadMemoryVariables(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, vars["history"])
}

func TestConversions(t *testing.T) {
	turn, err := FromChatMessage(llms.AIChatMessage{Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, core.AITurn("x"), turn)

	assert.Equal(t, llms.HumanChatMessage{Content: "y"}, ToChatMessage(core.HumanMessage{Content: "y"}))
	assert.Nil(t, ToChatMessage(nil))

	got := ToChatMessages([]core.Message{nil, core.AIMessage{Content: "z"}})
	assert.Equal(t, []llms.ChatMessage{llms.AIChatMessage{Content: "z"}}, got)
}
