package chat

import (
	"fmt"
	"strings"
)

// GeneralSystemPrompt is used for queries that need no company documents
const GeneralSystemPrompt = "You are a friendly HR onboarding assistant answering general queries and engaging in conversation."

// NoMatchText is returned when retrieval finds nothing and answers are not composed
const NoMatchText = "I'm sorry, I couldn't find relevant information."

// UnavailableText is shown in place of an answer the model could not produce
const UnavailableText = "The onboarding assistant is unavailable right now. Please try again in a few minutes."

// buildJobSystemPrompt embeds the retrieved context and the learning topic
func buildJobSystemPrompt(context, topic string) string {
	return fmt.Sprintf(
		"You are an HR onboarding assistant. The following context is retrieved from the company's documents:\n\n%s\n\nNow answer the user's question related to %s.",
		context, topic,
	)
}

// withRoleHint appends the user's business role to a system prompt
func withRoleHint(prompt, role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nThe user works as a %s. Tailor the answer to that role where it matters.", prompt, role)
}
