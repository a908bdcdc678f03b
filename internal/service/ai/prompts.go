package ai

import "fmt"

// TranslatePrompt asks for a bare translation of text into language.
func TranslatePrompt(language, text string) string {
	return fmt.Sprintf("Translate this medical text to %s. Return ONLY the translation. Text: \"%s\"", language, text)
}

// Summary section headers the scribe prompt asks for.
const (
	HeaderChiefComplaint = "🤒 Chief Complaint"
	HeaderSymptoms       = "💊 Symptoms Identified"
	HeaderActionPlan     = "📋 Action Plan"
)

// SummaryPrompt wraps a formatted transcript in the medical scribe
// instructions.
func SummaryPrompt(transcript string) string {
	return "You are an expert medical scribe. Summarize the following doctor-patient conversation.\n" +
		"Format your response clearly with these headers:\n" +
		"- " + HeaderChiefComplaint + "\n" +
		"- " + HeaderSymptoms + "\n" +
		"- " + HeaderActionPlan + "\n\n" +
		"Conversation:\n" + transcript
}
