package conversation

// TranslationState tags the lifecycle of a message's translation.
type TranslationState string

const (
	StatePending    TranslationState = "pending"
	StateTranslated TranslationState = "translated"
	StateFailed     TranslationState = "failed"
)

// Sentinels written into translatedText.
const (
	PlaceholderText   = "Translating..."
	TranslationError  = "Translation Error"
	MissingCredential = "Error: No API Key found."
)

// Translation is the tagged value behind translatedText. Text is what the
// other panel shows for translated and failed states; Reason keeps the
// underlying error for failed ones.
type Translation struct {
	State  TranslationState
	Text   string
	Reason string
}

// PendingTranslation is the value a new message starts with.
func PendingTranslation() Translation {
	return Translation{State: StatePending}
}

// Translated wraps a collaborator response.
func Translated(text string) Translation {
	return Translation{State: StateTranslated, Text: text}
}

// Failed records a failure; text is the sentinel shown to the reader.
func Failed(text, reason string) Translation {
	if text == "" {
		text = TranslationError
	}
	return Translation{State: StateFailed, Text: text, Reason: reason}
}

// Pending reports whether the translation is still outstanding.
func (t Translation) Pending() bool {
	return t.State == StatePending || t.State == ""
}

// DisplayText is the string the counterpart panel renders.
func (t Translation) DisplayText() string {
	if t.Pending() {
		return PlaceholderText
	}
	return t.Text
}

func inferTranslation(text string) Translation {
	switch text {
	case "", PlaceholderText:
		return PendingTranslation()
	case TranslationError, MissingCredential:
		return Translation{State: StateFailed, Text: text}
	}
	return Translated(text)
}
