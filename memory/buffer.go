package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/logging"
)

// ErrAmbiguousKey is returned by SaveContext when the input or output key
// cannot be inferred from a map with several entries.
var ErrAmbiguousKey = errors.New("memory: ambiguous input or output key")

// BufferOptions configures a BufferMemory.
type BufferOptions struct {
	// MemoryKey names the variable returned by LoadMemoryVariables.
	MemoryKey string
	// ReturnMessages makes LoadMemoryVariables return []core.Message instead
	// of a formatted buffer string.
	ReturnMessages bool
	HumanPrefix    string
	AIPrefix       string
	// InputKey and OutputKey select the values SaveContext stores. When empty
	// the single entry of the respective map is used.
	InputKey  string
	OutputKey string
	// WindowSize is applied to reads that do not set their own window.
	WindowSize int
	Logger     logging.Logger
}

// BufferMemory is the memory object handed to orchestration code. It
// delegates persistence to a core.MessageStore and keeps the last read of
// each session in a local cache.
type BufferMemory struct {
	store core.MessageStore
	opts  BufferOptions

	mu    sync.RWMutex
	cache map[string][]core.Message
}

// NewBufferMemory wraps store.
func NewBufferMemory(store core.MessageStore, optFns ...func(o *BufferOptions)) (*BufferMemory, error) {
	if store == nil {
		return nil, core.ErrMissingStore
	}
	opts := BufferOptions{
		MemoryKey:   "history",
		HumanPrefix: "Human",
		AIPrefix:    "AI",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MemoryKey == "" {
		return nil, fmt.Errorf("memory key must not be empty")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &BufferMemory{store: store, opts: opts, cache: make(map[string][]core.Message)}, nil
}

// Store returns the underlying message store.
func (b *BufferMemory) Store() core.MessageStore { return b.store }

// MemoryKey returns the configured memory variable name.
func (b *BufferMemory) MemoryKey() string { return b.opts.MemoryKey }

// MemoryVariables lists the variables LoadMemoryVariables returns.
func (b *BufferMemory) MemoryVariables() []string { return []string{b.opts.MemoryKey} }

// ReturnMessages reports whether LoadMemoryVariables returns messages.
func (b *BufferMemory) ReturnMessages() bool { return b.opts.ReturnMessages }

// callOptions prepends the default window to optFns and returns the
// resolved session id and the number of non-nil prepended messages.
func (b *BufferMemory) callOptions(optFns []func(o *core.CallOptions)) ([]func(o *core.CallOptions), string, int) {
	fns := make([]func(o *core.CallOptions), 0, len(optFns)+1)
	if b.opts.WindowSize > 0 {
		fns = append(fns, core.WithWindowSize(b.opts.WindowSize))
	}
	fns = append(fns, optFns...)
	o := core.ApplyCallOptions(fns...)
	sessionID := o.SessionID
	if sessionID == "" {
		sessionID = b.store.SessionID()
	}
	seeded := 0
	for _, m := range o.Prepend {
		if m != nil {
			seeded++
		}
	}
	return fns, sessionID, seeded
}

// GetChatMessages returns the session history as messages and refreshes the
// local cache for that session. Prepended messages are returned but not
// cached.
func (b *BufferMemory) GetChatMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) ([]core.Message, error) {
	fns, sessionID, seeded := b.callOptions(optFns)
	msgs, err := b.store.GetMessages(ctx, fns...)
	if err != nil {
		return nil, err
	}
	if seeded > len(msgs) {
		seeded = len(msgs)
	}
	snapshot := make([]core.Message, len(msgs)-seeded)
	copy(snapshot, msgs[seeded:])
	b.mu.Lock()
	b.cache[sessionID] = snapshot
	b.mu.Unlock()
	return msgs, nil
}

// GetRawChatMessages returns the session history as wire records.
func (b *BufferMemory) GetRawChatMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) ([]core.StoredMessage, error) {
	fns, _, _ := b.callOptions(optFns)
	return b.store.GetStoredMessages(ctx, fns...)
}

// AddChatMessages appends a human/AI batch.
func (b *BufferMemory) AddChatMessages(ctx context.Context, turns []core.ChatTurn, optFns ...func(o *core.CallOptions)) error {
	return b.store.AddMessages(ctx, turns, optFns...)
}

// ClearChatMessages deletes the session in the store, then drops the local
// cache entry. The cache is kept when the store call fails.
func (b *BufferMemory) ClearChatMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) error {
	_, sessionID, _ := b.callOptions(optFns)
	if err := b.store.ClearMessages(ctx, optFns...); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.cache, sessionID)
	b.mu.Unlock()
	b.opts.Logger.Debug("Cleared local message cache", "session_id", sessionID)
	return nil
}

// Cached returns the last history read for sessionID ("" selects the
// default session), or nil.
func (b *BufferMemory) Cached(sessionID string) []core.Message {
	if sessionID == "" {
		sessionID = b.store.SessionID()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	msgs, ok := b.cache[sessionID]
	if !ok {
		return nil
	}
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out
}

// LoadMemoryVariables returns the history under MemoryKey, either as
// []core.Message or as a "Human: ...\nAI: ..." buffer string.
func (b *BufferMemory) LoadMemoryVariables(ctx context.Context, _ map[string]any, optFns ...func(o *core.CallOptions)) (map[string]any, error) {
	msgs, err := b.GetChatMessages(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	if b.opts.ReturnMessages {
		return map[string]any{b.opts.MemoryKey: msgs}, nil
	}
	return map[string]any{b.opts.MemoryKey: BufferString(msgs, b.opts.HumanPrefix, b.opts.AIPrefix)}, nil
}

// SaveContext stores one exchange: the input value as a human turn and the
// output value as an AI turn.
func (b *BufferMemory) SaveContext(ctx context.Context, inputs, outputs map[string]any, optFns ...func(o *core.CallOptions)) error {
	in, err := pickValue(inputs, b.opts.InputKey, b.opts.MemoryKey)
	if err != nil {
		return fmt.Errorf("save context inputs: %w", err)
	}
	out, err := pickValue(outputs, b.opts.OutputKey, "")
	if err != nil {
		return fmt.Errorf("save context outputs: %w", err)
	}
	return b.store.AddMessages(ctx, []core.ChatTurn{core.HumanTurn(in), core.AITurn(out)}, optFns...)
}

// Clear clears the default session.
func (b *BufferMemory) Clear(ctx context.Context) error {
	return b.ClearChatMessages(ctx)
}

// BufferString renders messages one per line as "<prefix>: <content>".
func BufferString(msgs []core.Message, humanPrefix, aiPrefix string) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		prefix := humanPrefix
		if m.Type() == core.RoleAI {
			prefix = aiPrefix
		}
		lines = append(lines, prefix+": "+m.GetContent())
	}
	return strings.Join(lines, "\n")
}

// pickValue returns values[key] when key is set, otherwise the only entry
// not named ignore.
func pickValue(values map[string]any, key, ignore string) (string, error) {
	if key != "" {
		v, ok := values[key]
		if !ok {
			return "", fmt.Errorf("key %q not found", key)
		}
		return stringify(v), nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == ignore && ignore != "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) != 1 {
		sort.Strings(keys)
		return "", fmt.Errorf("%w: got keys %v", ErrAmbiguousKey, keys)
	}
	return stringify(values[keys[0]]), nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
