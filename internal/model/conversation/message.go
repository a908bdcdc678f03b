package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a message and whose panel renders it.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// TimestampLayout renders creation times the way the panels show them.
const TimestampLayout = "03:04 PM"

var ErrInvalidRole = errors.New("sender must be doctor or patient")

// ParseRole validates a wire value.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleDoctor:
		return RoleDoctor, nil
	case RolePatient:
		return RolePatient, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
}

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// Counterpart returns the role on the other side of the conversation.
func (r Role) Counterpart() Role {
	if r == RoleDoctor {
		return RolePatient
	}
	return RoleDoctor
}

// Message is one send action. Only Translation changes after creation.
type Message struct {
	ID           string
	Sender       Role
	OriginalText string
	Translation  Translation
	Timestamp    string
	IsAudio      bool
}

// NewMessage builds a message whose translation is still pending.
func NewMessage(id string, sender Role, text string, at time.Time) Message {
	return Message{
		ID:           id,
		Sender:       sender,
		OriginalText: text,
		Translation:  PendingTranslation(),
		Timestamp:    at.Format(TimestampLayout),
	}
}

// TranslatedText is the value stored under "translatedText".
func (m Message) TranslatedText() string {
	return m.Translation.DisplayText()
}

type messageJSON struct {
	ID               string           `json:"id"`
	Sender           Role             `json:"sender"`
	OriginalText     string           `json:"originalText"`
	TranslatedText   string           `json:"translatedText"`
	TranslationState TranslationState `json:"translationState,omitempty"`
	TranslationError string           `json:"translationError,omitempty"`
	Timestamp        string           `json:"timestamp"`
	IsAudio          bool             `json:"isAudio,omitempty"`
}

// MarshalJSON keeps the flat layout browsers persisted before the
// translation state was tracked separately.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:               m.ID,
		Sender:           m.Sender,
		OriginalText:     m.OriginalText,
		TranslatedText:   m.Translation.DisplayText(),
		TranslationState: m.Translation.State,
		TranslationError: m.Translation.Reason,
		Timestamp:        m.Timestamp,
		IsAudio:          m.IsAudio,
	})
}

// UnmarshalJSON accepts both layouts. Without translationState the state is
// inferred from the text.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{
		ID:           raw.ID,
		Sender:       raw.Sender,
		OriginalText: raw.OriginalText,
		Timestamp:    raw.Timestamp,
		IsAudio:      raw.IsAudio,
	}

	switch raw.TranslationState {
	case StatePending:
		m.Translation = PendingTranslation()
	case StateTranslated:
		m.Translation = Translated(raw.TranslatedText)
	case StateFailed:
		m.Translation = Translation{State: StateFailed, Text: raw.TranslatedText, Reason: raw.TranslationError}
	default:
		m.Translation = inferTranslation(raw.TranslatedText)
	}
	return nil
}
