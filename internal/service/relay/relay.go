package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
)

var ErrClosed = errors.New("relay closed")

// Translator produces the translation of a message for the target role.
type Translator interface {
	Translate(ctx context.Context, text string, target conversation.Role) conversation.Translation
}

// Relay runs the send flow: the message is appended at once with a pending
// translation, then translated in the background and patched by id.
type Relay struct {
	registry   *conversationService.Registry
	translator Translator

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(registry *conversationService.Registry, translator Translator) *Relay {
	return &Relay{registry: registry, translator: translator}
}

// Send appends text from sender to the conversation and starts its
// translation. The translation outlives ctx; it is not cancelled when the
// request ends. After Close, Send returns ErrClosed and appends nothing.
func (r *Relay) Send(ctx context.Context, sessionID string, sender conversation.Role, text string, isAudio bool) (conversation.Message, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return conversation.Message{}, ErrClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	store, err := r.registry.Open(ctx, sessionID)
	if err != nil {
		r.wg.Done()
		return conversation.Message{}, err
	}

	msg, err := store.Append(ctx, sender, text, conversationService.WithAudio(isAudio))
	if err != nil {
		r.wg.Done()
		return conversation.Message{}, err
	}

	go r.translate(context.WithoutCancel(ctx), store, msg)

	return msg, nil
}

func (r *Relay) translate(ctx context.Context, store *conversationService.Store, msg conversation.Message) {
	defer r.wg.Done()

	t := r.translator.Translate(ctx, msg.OriginalText, msg.Sender.Counterpart())
	if !store.PatchTranslation(ctx, msg.ID, t) {
		logging.Ctx(ctx).Debug().Str("message", msg.ID).Msg("translation arrived for a message no longer pending")
	}
}

// Wait blocks until every started translation has been patched.
func (r *Relay) Wait() {
	r.wg.Wait()
}

// Close refuses further sends and waits for the translations in flight.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
