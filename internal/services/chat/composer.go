package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
)

// Grounding is the document context for a job answer
type Grounding struct {
	DocumentID string
	Text       string
	Topic      string
}

// CompositionError reports a failed answer. Its Error text may carry transport
// detail; UserMessage never does.
type CompositionError struct {
	Err error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("answer composition failed: %v", e.Err)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user in place of an answer
func (e *CompositionError) UserMessage() string {
	return UnavailableText
}

// Composer turns a query plus optional grounding into an answer with one chat call
type Composer struct {
	llm          interfaces.LLMService
	defaultTopic string
	logger       arbor.ILogger
}

// NewComposer creates a composer. defaultTopic fills in grounding without a topic.
func NewComposer(llm interfaces.LLMService, defaultTopic string, logger arbor.ILogger) *Composer {
	return &Composer{
		llm:          llm,
		defaultTopic: defaultTopic,
		logger:       logger,
	}
}

// Compose answers query. A nil grounding uses the general prompt. recent holds
// prior turns, oldest first, and goes between the system prompt and the query.
func (c *Composer) Compose(ctx context.Context, query string, grounding *Grounding, recent []interfaces.Message, roleHint string) (string, error) {
	messages := c.BuildMessages(query, grounding, recent, roleHint)

	startTime := time.Now()
	answer, err := c.llm.Chat(ctx, messages)
	if err != nil {
		return "", &CompositionError{Err: err}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", &CompositionError{Err: fmt.Errorf("empty response from %s", c.llm.Name())}
	}

	c.logger.Debug().
		Bool("grounded", grounding != nil).
		Int("history_messages", len(recent)).
		Int("answer_length", len(answer)).
		Dur("duration", time.Since(startTime)).
		Msg("Answer composed")

	return answer, nil
}

// BuildMessages constructs the message array for the LLM
func (c *Composer) BuildMessages(query string, grounding *Grounding, recent []interfaces.Message, roleHint string) []interfaces.Message {
	var systemPrompt string
	if grounding != nil {
		topic := grounding.Topic
		if topic == "" {
			topic = c.defaultTopic
		}
		systemPrompt = buildJobSystemPrompt(grounding.Text, topic)
	} else {
		systemPrompt = GeneralSystemPrompt
	}
	systemPrompt = withRoleHint(systemPrompt, roleHint)

	messages := make([]interfaces.Message, 0, len(recent)+2)
	messages = append(messages, interfaces.Message{Role: interfaces.RoleSystem, Content: systemPrompt})
	messages = append(messages, recent...)
	messages = append(messages, interfaces.Message{Role: interfaces.RoleUser, Content: query})
	return messages
}
