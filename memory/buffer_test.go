package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmemory/core"
	ctu "github.com/hupe1980/chatmemory/internal/testutil"
)

func newTestBuffer(t *testing.T, optFns ...func(o *BufferOptions)) (*BufferMemory, *InMemoryListStore) {
	t.Helper()
	lists := NewInMemoryListStore()
	store := newTestStore(t, lists)
	buf, err := NewBufferMemory(store, optFns...)
	require.NoError(t, err)
	return buf, lists
}

func TestNewBufferMemory(t *testing.T) {
	_, err := NewBufferMemory(nil)
	assert.ErrorIs(t, err, core.ErrMissingStore)

	store := newTestStore(t, NewInMemoryListStore())
	_, err = NewBufferMemory(store, func(o *BufferOptions) { o.MemoryKey = "" })
	assert.Error(t, err)

	buf, err := NewBufferMemory(store)
	require.NoError(t, err)
	assert.Equal(t, "history", buf.MemoryKey())
	assert.Equal(t, []string{"history"}, buf.MemoryVariables())
	assert.False(t, buf.ReturnMessages())
}

func TestBufferMemory_LoadMemoryVariables_BufferString(t *testing.T) {
	ctx := context.Background()
	buf, _ := newTestBuffer(t)
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("hi"), core.AITurn("hello")}))

	vars, err := buf.LoadMemoryVariables(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"history": "Human: hi\nAI: hello"}, vars)
}

func TestBufferMemory_LoadMemoryVariables_Messages(t *testing.T) {
	ctx := context.Background()
	buf, _ := newTestBuffer(t, func(o *BufferOptions) {
		o.ReturnMessages = true
		o.MemoryKey = "chat_history"
	})
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("hi"), core.AITurn("hello")}))

	vars, err := buf.LoadMemoryVariables(ctx, map[string]any{"input": "ignored"})
	require.NoError(t, err)
	msgs, ok := vars["chat_history"].([]core.Message)
	require.True(t, ok)
	assert.Equal(t, []string{"hi", "hello"}, ctu.Contents(msgs))
}

func TestBufferMemory_WindowDefault(t *testing.T) {
	ctx := context.Background()
	buf, _ := newTestBuffer(t, func(o *BufferOptions) { o.WindowSize = 2 })
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("hi"), core.AITurn("hello")}))
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("bye")}))

	msgs, err := buf.GetChatMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "bye"}, ctu.Contents(msgs))

	msgs, err = buf.GetChatMessages(ctx, core.WithWindowSize(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", "hello", "bye"}, ctu.Contents(msgs))

	raw, err := buf.GetRawChatMessages(ctx)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "bye", raw[1].Data.Content)
}

func TestBufferMemory_SaveContext(t *testing.T) {
	ctx := context.Background()
	buf, _ := newTestBuffer(t)

	require.NoError(t, buf.SaveContext(ctx, map[string]any{"input": "hi"}, map[string]any{"output": "hello"}))
	msgs, err := buf.GetChatMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Message{core.HumanMessage{Content: "hi"}, core.AIMessage{Content: "hello"}}, msgs)

	err = buf.SaveContext(ctx, map[string]any{"a": "1", "b": "2"}, map[string]any{"output": "x"})
	assert.ErrorIs(t, err, ErrAmbiguousKey)

	keyed, _ := newTestBuffer(t, func(o *BufferOptions) {
		o.InputKey = "question"
		o.OutputKey = "answer"
	})
	require.NoError(t, keyed.SaveContext(ctx,
		map[string]any{"question": "2+2?", "context": "math"},
		map[string]any{"answer": 4, "sources": "none"},
	))
	msgs, err = keyed.GetChatMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2+2?", "4"}, ctu.Contents(msgs))

	err = keyed.SaveContext(ctx, map[string]any{"other": "x"}, map[string]any{"answer": "y"})
	assert.Error(t, err)
}

func TestBufferMemory_ClearDropsCache(t *testing.T) {
	ctx := context.Background()
	buf, lists := newTestBuffer(t)
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("hi")}))
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("other")}, core.WithSessionID("s2")))

	_, err := buf.GetChatMessages(ctx)
	require.NoError(t, err)
	_, err = buf.GetChatMessages(ctx, core.WithSessionID("s2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, ctu.Contents(buf.Cached("")))
	assert.Equal(t, []string{"other"}, ctu.Contents(buf.Cached("s2")))

	lists.FailNext(errors.New("down"))
	require.Error(t, buf.ClearChatMessages(ctx))
	assert.NotNil(t, buf.Cached(""), "cache kept when the store call fails")

	require.NoError(t, buf.Clear(ctx))
	assert.Nil(t, buf.Cached(""))
	assert.NotNil(t, buf.Cached("s2"))
	assert.Equal(t, 0, lists.Len("s1"))

	require.NoError(t, buf.ClearChatMessages(ctx, core.WithSessionID("s2")))
	assert.Nil(t, buf.Cached("s2"))
}

func TestBufferMemory_CacheExcludesPrepend(t *testing.T) {
	ctx := context.Background()
	buf, _ := newTestBuffer(t)
	require.NoError(t, buf.AddChatMessages(ctx, []core.ChatTurn{core.HumanTurn("hi")}))

	msgs, err := buf.GetChatMessages(ctx, core.WithPrepend(core.AIMessage{Content: "seed"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "hi"}, ctu.Contents(msgs))
	assert.Equal(t, []core.Message{core.HumanMessage{Content: "hi"}}, buf.Cached(""))

	empty, _ := newTestBuffer(t)
	_, err = empty.GetChatMessages(ctx, core.WithPrepend(core.AIMessage{Content: "seed"}))
	require.NoError(t, err)
	assert.Empty(t, empty.Cached(""))
}

func TestBufferString(t *testing.T) {
	msgs := ctu.NewConversationBuilder().Human("hi").AI("hello").Messages()
	assert.Equal(t, "User: hi\nBot: hello", BufferString(msgs, "User", "Bot"))
	assert.Equal(t, "", BufferString(nil, "Human", "AI"))
}
