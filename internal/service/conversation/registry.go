package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/storage"
)

var ErrInvalidSessionID = errors.New("invalid session id")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Registry owns one Store per conversation and restores logs from storage
// the first time a conversation is opened.
type Registry struct {
	storage   storage.Storage
	prefix    string
	defaultID string
	opts      []Option

	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry builds a registry. The default conversation persists under the
// bare prefix; every other one under "<prefix>:<id>".
func NewRegistry(backend storage.Storage, prefix, defaultID string, opts ...Option) *Registry {
	return &Registry{
		storage:   backend,
		prefix:    prefix,
		defaultID: defaultID,
		opts:      opts,
		stores:    make(map[string]*Store),
	}
}

// DefaultID returns the id of the always-available conversation.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Key maps a conversation id onto its storage key.
func (r *Registry) Key(id string) string {
	if id == r.defaultID {
		return r.prefix
	}
	return r.prefix + ":" + id
}

// Create provisions a new empty conversation.
func (r *Registry) Create(_ context.Context) (conversation.Session, *Store, error) {
	session := conversation.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	store := NewStore(r.Key(session.ID), r.storage, r.opts...)

	r.mu.Lock()
	r.stores[session.ID] = store
	r.mu.Unlock()

	return session, store, nil
}

// Open returns the conversation with the given id, restoring it from
// storage when it is not loaded yet. A missing or malformed persisted log
// opens as an empty conversation; a storage failure is returned.
func (r *Registry) Open(ctx context.Context, id string) (*Store, error) {
	if !sessionIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	r.mu.RLock()
	store, ok := r.stores[id]
	r.mu.RUnlock()
	if ok {
		return store, nil
	}

	restored, err := r.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[id]; ok {
		return existing, nil
	}
	r.stores[id] = restored
	return restored, nil
}

func (r *Registry) restore(ctx context.Context, id string) (*Store, error) {
	store := NewStore(r.Key(id), r.storage, r.opts...)
	if r.storage == nil {
		return store, nil
	}

	data, err := r.storage.Load(ctx, store.Key())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}

	if err := store.Restore(data); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("session", id).Msg("persisted log unreadable, starting empty")
	}
	logging.Ctx(ctx).Debug().Str("session", id).Int("messages", store.Len()).Msg("conversation restored")
	return store, nil
}
