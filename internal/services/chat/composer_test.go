package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
)

// mockLLM records every call and answers through chatFunc
type mockLLM struct {
	mu       sync.Mutex
	chatFunc func(ctx context.Context, messages []interfaces.Message) (string, error)
	calls    [][]interfaces.Message
}

func (m *mockLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.chatFunc(ctx, messages)
}

func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Name() string                          { return "mock" }
func (m *mockLLM) Close() error                          { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockLLM) lastCall() []interfaces.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func TestComposer_GeneralPrompt(t *testing.T) {
	llm := &mockLLM{chatFunc: func(ctx context.Context, messages []interfaces.Message) (string, error) {
		return "  Hello! Welcome aboard.  ", nil
	}}
	c := NewComposer(llm, "company_policies", arbor.NewLogger())

	answer, err := c.Compose(context.Background(), "hi", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello! Welcome aboard.", answer)

	msgs := llm.lastCall()
	require.Len(t, msgs, 2)
	assert.Equal(t, GeneralSystemPrompt, msgs[0].Content)
	assert.Equal(t, interfaces.Message{Role: interfaces.RoleUser, Content: "hi"}, msgs[1])
}

func TestComposer_BuildMessages(t *testing.T) {
	c := NewComposer(nil, "company_policies", arbor.NewLogger())
	recent := []interfaces.Message{
		{Role: interfaces.RoleUser, Content: "earlier question"},
		{Role: interfaces.RoleAssistant, Content: "earlier answer"},
	}

	tests := []struct {
		name      string
		grounding *Grounding
		role      string
		contains  []string
	}{
		{
			name:      "grounded with default topic",
			grounding: &Grounding{DocumentID: "annual leave", Text: "Employees receive 25 days."},
			contains: []string{
				"The following context is retrieved from the company's documents:\n\nEmployees receive 25 days.",
				"related to company_policies.",
			},
		},
		{
			name:      "grounded with explicit topic",
			grounding: &Grounding{Text: "VPN guide", Topic: "it_setup"},
			contains:  []string{"related to it_setup."},
		},
		{
			name:     "role hint",
			role:     "Business Analyst",
			contains: []string{GeneralSystemPrompt, "The user works as a Business Analyst."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := c.BuildMessages("what now?", tt.grounding, recent, tt.role)
			require.Len(t, msgs, 4)
			assert.Equal(t, interfaces.RoleSystem, msgs[0].Role)
			for _, s := range tt.contains {
				assert.Contains(t, msgs[0].Content, s)
			}
			assert.Equal(t, recent, msgs[1:3])
			assert.Equal(t, "what now?", msgs[3].Content)
		})
	}
}

func TestComposer_Failure(t *testing.T) {
	transport := errors.New("401 Unauthorized: invalid x-api-key sk-secret")

	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "transport error", err: transport},
		{name: "empty reply", reply: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{chatFunc: func(ctx context.Context, messages []interfaces.Message) (string, error) {
				return tt.reply, tt.err
			}}
			_, err := NewComposer(llm, "", arbor.NewLogger()).Compose(context.Background(), "q", nil, nil, "")

			var compErr *CompositionError
			require.ErrorAs(t, err, &compErr)
			assert.Equal(t, UnavailableText, compErr.UserMessage())
			assert.NotContains(t, compErr.UserMessage(), "sk-secret")
			if tt.err != nil {
				assert.ErrorIs(t, err, transport)
			}
		})
	}
}
