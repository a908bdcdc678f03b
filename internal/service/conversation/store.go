package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/metrics"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/storage"
)

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrDuplicateID  = errors.New("duplicate message id")
	ErrMalformedLog = errors.New("malformed conversation log")
)

const persistTimeout = 5 * time.Second

// EventType names a change to the log.
type EventType string

const (
	EventAppended EventType = "appended"
	EventPatched  EventType = "patched"
	EventReplaced EventType = "replaced"
)

// Event is delivered to subscribers after every mutation. Message is the
// affected entry; it is empty for EventReplaced.
type Event struct {
	Type    EventType
	Message conversation.Message
}

// Store owns one conversation log. Messages are addressed by id; order keeps
// append order for rendering. Every mutation re-serializes the whole log
// under a single storage key.
type Store struct {
	key     string
	storage storage.Storage
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	order   []string
	byID    map[string]*conversation.Message
	version uint64
	subs    map[uint64]chan Event
	nextSub uint64

	persistMu   sync.Mutex
	lastWritten uint64
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid generation for message ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore returns an empty store persisting under key. A nil backend
// disables persistence.
func NewStore(key string, backend storage.Storage, opts ...Option) *Store {
	s := &Store{
		key:     key,
		storage: backend,
		now:     time.Now,
		newID:   uuid.NewString,
		byID:    make(map[string]*conversation.Message),
		subs:    make(map[uint64]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of this log.
func (s *Store) Key() string {
	return s.key
}

// AppendOption adjusts a message before it is appended.
type AppendOption func(*conversation.Message)

// WithAudio marks the message as dictated.
func WithAudio(isAudio bool) AppendOption {
	return func(m *conversation.Message) { m.IsAudio = isAudio }
}

// Append adds a message with a pending translation and returns it.
// Blank text yields ErrEmptyMessage and leaves the log untouched.
func (s *Store) Append(ctx context.Context, sender conversation.Role, text string, opts ...AppendOption) (conversation.Message, error) {
	if strings.TrimSpace(text) == "" {
		return conversation.Message{}, ErrEmptyMessage
	}
	if !sender.Valid() {
		return conversation.Message{}, fmt.Errorf("%w: %q", conversation.ErrInvalidRole, sender)
	}

	msg := conversation.NewMessage(s.newID(), sender, text, s.now())
	for _, opt := range opts {
		opt(&msg)
	}

	s.mu.Lock()
	if _, exists := s.byID[msg.ID]; exists {
		s.mu.Unlock()
		return conversation.Message{}, fmt.Errorf("%w: %s", ErrDuplicateID, msg.ID)
	}
	stored := msg
	s.byID[msg.ID] = &stored
	s.order = append(s.order, msg.ID)
	data, version := s.serializeLocked()
	s.publishLocked(Event{Type: EventAppended, Message: msg})
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues(string(EventAppended)).Inc()
	s.persist(ctx, data, version)
	return msg, nil
}

// PatchTranslation sets the translation of message id. It reports false,
// without error, when the id is unknown (the log may have been replaced in
// the meantime) or the translation already left the pending state.
func (s *Store) PatchTranslation(ctx context.Context, id string, t conversation.Translation) bool {
	if t.Pending() {
		return false
	}

	s.mu.Lock()
	msg, ok := s.byID[id]
	if !ok || !msg.Translation.Pending() {
		s.mu.Unlock()
		return false
	}
	msg.Translation = t
	patched := *msg
	data, version := s.serializeLocked()
	s.publishLocked(Event{Type: EventPatched, Message: patched})
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues(string(EventPatched)).Inc()
	s.persist(ctx, data, version)
	return true
}

// Snapshot returns a copy of the log in append order.
func (s *Store) Snapshot() []conversation.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns a copy of message id.
func (s *Store) Get(id string) (conversation.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	if !ok {
		return conversation.Message{}, false
	}
	return *msg, true
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Serialize returns the persisted representation of the current log.
func (s *Store) Serialize() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Restore replaces the log with a previously serialized one without writing
// it back. Empty input yields an empty log; so does malformed input, in which
// case ErrMalformedLog is returned for the caller to log.
func (s *Store) Restore(data []byte) error {
	var messages []conversation.Message
	var err error
	if len(strings.TrimSpace(string(data))) > 0 {
		if uerr := json.Unmarshal(data, &messages); uerr != nil {
			messages = nil
			err = fmt.Errorf("%w: %v", ErrMalformedLog, uerr)
		}
	}

	s.mu.Lock()
	s.resetLocked(messages)
	s.publishLocked(Event{Type: EventReplaced})
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("restored").Inc()
	return err
}

// Replace imports a client-held log and persists it. Entries without id,
// with an unknown sender, or repeating an earlier id are dropped. It returns
// the number of messages kept.
func (s *Store) Replace(ctx context.Context, messages []conversation.Message) int {
	s.mu.Lock()
	kept := s.resetLocked(messages)
	data, version := s.serializeLocked()
	s.publishLocked(Event{Type: EventReplaced})
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues(string(EventReplaced)).Inc()
	s.persist(ctx, data, version)
	return kept
}

// Subscribe registers for change events. Events that do not fit in the
// buffer are dropped for that subscriber. Call cancel to unsubscribe; it
// closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) resetLocked(messages []conversation.Message) int {
	s.order = make([]string, 0, len(messages))
	s.byID = make(map[string]*conversation.Message, len(messages))

	for _, m := range messages {
		if m.ID == "" || !m.Sender.Valid() {
			continue
		}
		if _, dup := s.byID[m.ID]; dup {
			continue
		}
		msg := m
		s.byID[m.ID] = &msg
		s.order = append(s.order, m.ID)
	}

	if dropped := len(messages) - len(s.order); dropped > 0 {
		logging.L().Warn().Str("key", s.key).Int("dropped", dropped).Msg("dropped invalid messages from log")
	}
	return len(s.order)
}

func (s *Store) snapshotLocked() []conversation.Message {
	out := make([]conversation.Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *Store) serializeLocked() ([]byte, uint64) {
	s.version++
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		logging.L().Error().Err(err).Str("key", s.key).Msg("failed to serialize conversation log")
		return nil, s.version
	}
	return data, s.version
}

func (s *Store) publishLocked(ev Event) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			logging.L().Debug().Str("key", s.key).Uint64("subscriber", id).Msg("subscriber lagging, event dropped")
		}
	}
}

// persist writes data unless a newer version was already written.
func (s *Store) persist(ctx context.Context, data []byte, version uint64) {
	if s.storage == nil || data == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.lastWritten {
		return
	}
	s.lastWritten = version

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.storage.Save(writeCtx, s.key, data); err != nil {
		metrics.PersistFailures.Inc()
		logging.Ctx(ctx).Error().Err(err).Str("key", s.key).Uint64("version", version).Msg("failed to persist conversation log")
	}
}
