package conversation

// DisplayText applies the role-aware rule: the author sees what they wrote,
// the other side sees the translation (or its placeholder/sentinel).
func DisplayText(m Message, viewer Role) string {
	if m.Sender == viewer {
		return m.OriginalText
	}
	return m.Translation.DisplayText()
}

// PanelEntry is one bubble in a role's panel.
type PanelEntry struct {
	ID               string           `json:"id"`
	Sender           Role             `json:"sender"`
	Text             string           `json:"text"`
	Timestamp        string           `json:"timestamp"`
	Own              bool             `json:"own"`
	TranslationState TranslationState `json:"translationState"`
	IsAudio          bool             `json:"isAudio,omitempty"`
}

// Render builds the panel entry for viewer.
func Render(m Message, viewer Role) PanelEntry {
	state := m.Translation.State
	if state == "" {
		state = StatePending
	}
	return PanelEntry{
		ID:               m.ID,
		Sender:           m.Sender,
		Text:             DisplayText(m, viewer),
		Timestamp:        m.Timestamp,
		Own:              m.Sender == viewer,
		TranslationState: state,
		IsAudio:          m.IsAudio,
	}
}

// RenderPanel renders a whole snapshot in log order.
func RenderPanel(messages []Message, viewer Role) []PanelEntry {
	entries := make([]PanelEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, Render(m, viewer))
	}
	return entries
}
