package classifier

import "fmt"

// SystemPrompt instructs the model to answer with a single intent label
const SystemPrompt = `You are a classifier for an HR onboarding tool. Categorize the user input into one of these two categories:
- 'job': For queries about company policies, benefits, work responsibilities, or technical skills (e.g., SQL, Python).
- 'general': For greetings, small talk, or other non-job related queries.
Respond with only one word: 'job' or 'general'.`

// UserPrompt wraps the raw query for classification
func UserPrompt(query string) string {
	return fmt.Sprintf("User input: %s\n\nClassify the input:", query)
}
