package participant

import "github.com/naomedical/translator/backend/internal/model/conversation"

// Store exposes participant profiles to handlers and the translation relay.
type Store interface {
	List() []Participant
	FindByRole(role conversation.Role) (Participant, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Participant
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Participant) *MemoryStore {
	return &MemoryStore{items: append([]Participant(nil), items...)}
}

// List returns the configured profiles.
func (s *MemoryStore) List() []Participant {
	return append([]Participant(nil), s.items...)
}

// FindByRole looks up the profile for a role.
func (s *MemoryStore) FindByRole(role conversation.Role) (Participant, bool) {
	for _, item := range s.items {
		if item.Role == role {
			return item, true
		}
	}
	return Participant{}, false
}

// LanguageFor returns the language messages addressed to role are
// translated into, defaulting to English for doctors and Spanish otherwise.
func LanguageFor(s Store, role conversation.Role) string {
	if s != nil {
		if p, ok := s.FindByRole(role); ok && p.Language != "" {
			return p.Language
		}
	}
	if role == conversation.RoleDoctor {
		return "English"
	}
	return "Spanish"
}
