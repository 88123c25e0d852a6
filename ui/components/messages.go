package components

import (
	"strings"

	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/ui/styles"
)

// RenderMessages renders the transcript. System notices are skipped unless
// showSystem is on; a pending assistant message gets a trailing cursor.
func RenderMessages(messages []models.Message, showSystem bool) string {
	var b strings.Builder

	systemStyle := styles.SystemStyle()
	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	programStyle := styles.ProgramStyle()

	for _, msg := range messages {
		switch msg.Type {
		case models.System:
			if showSystem {
				b.WriteString(systemStyle.Render(msg.Content) + "\n\n")
			}
		case models.User:
			b.WriteString(userStyle.Render("You: "+msg.Content) + "\n\n")
		case models.Assistant:
			content := msg.Content
			if msg.Pending {
				content += "▌"
			}
			b.WriteString(assistantStyle.Render("Assistant: "+content) + "\n\n")
		case models.Program:
			b.WriteString(programStyle.Render(msg.Content) + "\n\n")
		}
	}

	return b.String()
}
