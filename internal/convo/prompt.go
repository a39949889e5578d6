package convo

import (
	"fmt"

	"github.com/baalimago/screenbuddy/internal/models"
)

// UserContent builds the content of the new user turn from extracted
// screen text and/or a direct intent. When both are present the intent
// leads as the primary instruction and the extracted text follows as
// quoted supporting context. This ordering matters for response relevance.
func UserContent(extracted, intent string) string {
	switch {
	case intent != "" && extracted != "":
		return fmt.Sprintf("%v\n\nExtracted screen text:\n\"\"\"\n%v\n\"\"\"", intent, extracted)
	case intent != "":
		return intent
	default:
		return extracted
	}
}

// Assemble a chat for the completion stream: a fixed system directive
// first, then the history oldest-first, then the new user turn. Given the
// same inputs the output is always identical.
func Assemble(systemPrompt string, history []models.Message, extracted, intent string) models.Chat {
	msgs := make([]models.Message, 0, len(history)+2)
	if systemPrompt != "" {
		msgs = append(msgs, models.Message{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		msgs = append(msgs, models.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, models.Message{Role: "user", Content: UserContent(extracted, intent)})
	return models.Chat{Messages: msgs}
}
