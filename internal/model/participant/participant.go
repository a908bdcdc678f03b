package participant

import "github.com/naomedical/translator/backend/internal/model/conversation"

// Participant describes how one side of the split screen is presented and
// which language messages addressed to it are translated into.
type Participant struct {
	Role     conversation.Role `json:"role"`
	Title    string            `json:"title"`
	Name     string            `json:"name"`
	Language string            `json:"language"`
	Locale   string            `json:"locale"`
	Theme    string            `json:"theme"`
}

// Seed provides the doctor and patient profiles of the default clinic setup.
func Seed() []Participant {
	return []Participant{
		{
			Role:     conversation.RoleDoctor,
			Title:    "Doctor (English)",
			Name:     "Dr. Sarah Johnson",
			Language: "English",
			Locale:   "en-US",
			Theme:    "blue",
		},
		{
			Role:     conversation.RolePatient,
			Title:    "Patient (Spanish)",
			Name:     "John Doe",
			Language: "Spanish",
			Locale:   "es-ES",
			Theme:    "green",
		},
	}
}
