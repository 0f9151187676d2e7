package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/chatmemory/core"
	"github.com/hupe1980/chatmemory/logging"
	"github.com/hupe1980/chatmemory/metrics"
)

// Operation names used for logging and metrics.
const (
	OpGetMessages   = "get_messages"
	OpAddMessages   = "add_messages"
	OpClearMessages = "clear_messages"
)

// SessionStoreOptions configures a SessionMessageStore.
type SessionStoreOptions struct {
	// SessionID is the default session; a random id is generated when empty.
	SessionID string
	// SessionTTL is reapplied to the session list after every push. Zero
	// disables expiry.
	SessionTTL time.Duration
	// WindowSize is the default read window; <= 0 reads the full log. Calls
	// override it with core.WithWindowSize or core.WithoutWindow.
	WindowSize int
	// KeyPrefix is prepended to the session id to form the list key.
	KeyPrefix string
	// SkipMalformed drops undecodable entries with a warning instead of
	// failing the read.
	SkipMalformed bool
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// SessionMessageStore keeps a per-session chat log in a list service. The
// list is newest-first; reads reverse it into chronological order.
//
// Every operation acquires its own connection from the ListStore and closes
// it before returning. The store holds no mutable state beyond its options
// and is safe for concurrent use.
type SessionMessageStore struct {
	lists core.ListStore
	opts  SessionStoreOptions
}

// NewSessionMessageStore creates a store over lists.
func NewSessionMessageStore(lists core.ListStore, optFns ...func(o *SessionStoreOptions)) (*SessionMessageStore, error) {
	if lists == nil {
		return nil, core.ErrMissingStore
	}
	opts := SessionStoreOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionID == "" {
		opts.SessionID = core.NewSessionID()
	}
	if opts.SessionTTL < 0 {
		return nil, fmt.Errorf("session ttl must not be negative: %s", opts.SessionTTL)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &SessionMessageStore{lists: lists, opts: opts}, nil
}

// SessionID returns the default session id.
func (s *SessionMessageStore) SessionID() string { return s.opts.SessionID }

// SessionTTL returns the configured expiry.
func (s *SessionMessageStore) SessionTTL() time.Duration { return s.opts.SessionTTL }

func (s *SessionMessageStore) resolve(o core.CallOptions) (sessionID, key string) {
	sessionID = o.SessionID
	if sessionID == "" {
		sessionID = s.opts.SessionID
	}
	return sessionID, core.SessionKey(s.opts.KeyPrefix, sessionID)
}

// window resolves the read window: a positive per-call value wins, a
// negative one reads the full log, zero defers to the store default.
func (s *SessionMessageStore) window(o core.CallOptions) int {
	switch {
	case o.WindowSize > 0:
		return o.WindowSize
	case o.WindowSize < 0:
		return 0
	default:
		return s.opts.WindowSize
	}
}

// withConn runs fn on a freshly acquired connection and releases it on
// every path. fn receives a logger scoped to the session.
func (s *SessionMessageStore) withConn(ctx context.Context, op, sessionID string, fn func(conn core.ListConn, log logging.Logger) error) (err error) {
	log := logging.Scoped(s.opts.Logger, "", sessionID)
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		s.opts.Metrics.Observe(op, dur, err)
		if errors.Is(err, core.ErrMalformedRecord) {
			return
		}
		logging.LogStoreCall(log, op, dur, err)
	}()

	conn, err := s.lists.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", op, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("Failed to release list store connection", "operation", op, "error", cerr)
		}
	}()

	return fn(conn, log)
}

// readStored fetches the (windowed) log and returns it chronologically.
func (s *SessionMessageStore) readStored(ctx context.Context, o core.CallOptions) ([]core.StoredMessage, error) {
	sessionID, key := s.resolve(o)
	stop := int64(-1)
	if w := s.window(o); w > 0 {
		stop = int64(w - 1)
	}

	var records []core.StoredMessage
	err := s.withConn(ctx, OpGetMessages, sessionID, func(conn core.ListConn, log logging.Logger) error {
		raw, err := conn.Range(ctx, key, 0, stop)
		if err != nil {
			return fmt.Errorf("%s: range %q: %w", OpGetMessages, key, err)
		}
		records = make([]core.StoredMessage, 0, len(raw))
		for i := len(raw) - 1; i >= 0; i-- {
			sm, err := core.DecodeStored(raw[i])
			if err != nil {
				var mre *core.MalformedRecordError
				if errors.As(err, &mre) {
					mre.Index = len(raw) - 1 - i
				}
				s.opts.Metrics.MalformedRecord()
				if s.opts.SkipMalformed {
					log.Warn("Skipping malformed record", "error", err)
					continue
				}
				log.Error("Malformed record in session log", "error", err)
				return err
			}
			records = append(records, sm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetMessages returns the session log in chronological order, limited to the
// most recent WindowSize turns when a window applies, with any Prepend
// messages placed in front. It never mutates the store.
func (s *SessionMessageStore) GetMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) ([]core.Message, error) {
	o := core.ApplyCallOptions(optFns...)
	records, err := s.readStored(ctx, o)
	if err != nil {
		return nil, err
	}
	out := make([]core.Message, 0, len(o.Prepend)+len(records))
	for _, m := range o.Prepend {
		if m != nil {
			out = append(out, m)
		}
	}
	for _, sm := range records {
		m, err := core.FromStored(sm)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// GetStoredMessages is GetMessages returning the raw wire records.
func (s *SessionMessageStore) GetStoredMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) ([]core.StoredMessage, error) {
	o := core.ApplyCallOptions(optFns...)
	records, err := s.readStored(ctx, o)
	if err != nil {
		return nil, err
	}
	out := make([]core.StoredMessage, 0, len(o.Prepend)+len(records))
	for _, m := range o.Prepend {
		if m == nil {
			continue
		}
		out = append(out, core.ToStored(m))
	}
	return append(out, records...), nil
}

// AddMessages pushes a batch holding at most one human and at most one AI
// turn. The human turn is pushed first so that chronological reads list it
// before the AI turn. When a TTL is configured the session expiry is reset
// after each push. A failed second push does not undo the first.
func (s *SessionMessageStore) AddMessages(ctx context.Context, turns []core.ChatTurn, optFns ...func(o *core.CallOptions)) error {
	o := core.ApplyCallOptions(optFns...)
	ordered, err := orderBatch(turns)
	if err != nil {
		return err
	}
	if len(ordered) == 0 {
		return nil
	}
	entries := make([]string, 0, len(ordered))
	for _, m := range ordered {
		raw, err := core.EncodeMessage(m)
		if err != nil {
			return err
		}
		entries = append(entries, raw)
	}

	sessionID, key := s.resolve(o)
	return s.withConn(ctx, OpAddMessages, sessionID, func(conn core.ListConn, _ logging.Logger) error {
		for _, raw := range entries {
			if err := conn.PushHead(ctx, key, raw); err != nil {
				return fmt.Errorf("%s: push %q: %w", OpAddMessages, key, err)
			}
			if s.opts.SessionTTL > 0 {
				if err := conn.Expire(ctx, key, s.opts.SessionTTL); err != nil {
					return fmt.Errorf("%s: expire %q: %w", OpAddMessages, key, err)
				}
			}
		}
		return nil
	})
}

// ClearMessages deletes the session log. Clearing a missing session is a no-op.
func (s *SessionMessageStore) ClearMessages(ctx context.Context, optFns ...func(o *core.CallOptions)) error {
	o := core.ApplyCallOptions(optFns...)
	sessionID, key := s.resolve(o)
	return s.withConn(ctx, OpClearMessages, sessionID, func(conn core.ListConn, _ logging.Logger) error {
		if err := conn.Delete(ctx, key); err != nil {
			return fmt.Errorf("%s: delete %q: %w", OpClearMessages, key, err)
		}
		return nil
	})
}

// orderBatch validates a batch and returns its messages human first.
func orderBatch(turns []core.ChatTurn) ([]core.Message, error) {
	var human, ai core.Message
	for _, t := range turns {
		switch t.Role {
		case core.RoleHuman:
			if human != nil {
				return nil, fmt.Errorf("%w: more than one human turn", core.ErrInvalidBatch)
			}
			human = core.HumanMessage{Content: t.Text}
		case core.RoleAI:
			if ai != nil {
				return nil, fmt.Errorf("%w: more than one ai turn", core.ErrInvalidBatch)
			}
			ai = core.AIMessage{Content: t.Text}
		default:
			return nil, fmt.Errorf("%w: unknown role %q", core.ErrInvalidBatch, t.Role)
		}
	}
	out := make([]core.Message, 0, 2)
	if human != nil {
		out = append(out, human)
	}
	if ai != nil {
		out = append(out, ai)
	}
	return out, nil
}
