package conversation

import "strings"

// TranscriptLine is the part of a message the summary needs. Sender is kept
// as a plain string since summary requests arrive from clients verbatim.
type TranscriptLine struct {
	Sender       string `json:"sender"`
	OriginalText string `json:"originalText"`
}

// Lines projects a snapshot onto transcript lines.
func Lines(messages []Message) []TranscriptLine {
	lines := make([]TranscriptLine, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, TranscriptLine{Sender: string(m.Sender), OriginalText: m.OriginalText})
	}
	return lines
}

// FormatTranscript renders "{SENDER}: {originalText}" per line in order.
func FormatTranscript(lines []TranscriptLine) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(line.Sender))
		b.WriteString(": ")
		b.WriteString(line.OriginalText)
	}
	return b.String()
}
