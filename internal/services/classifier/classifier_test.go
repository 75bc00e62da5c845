package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

type mockLLM struct {
	chatFunc func(ctx context.Context, messages []interfaces.Message) (string, error)
	calls    int
}

func (m *mockLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	m.calls++
	return m.chatFunc(ctx, messages)
}

func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Name() string                          { return "mock" }
func (m *mockLLM) Close() error                          { return nil }

func replying(reply string, err error) *mockLLM {
	return &mockLLM{
		chatFunc: func(ctx context.Context, messages []interfaces.Message) (string, error) {
			return reply, err
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{name: "job", reply: "job", want: models.IntentJob},
		{name: "general", reply: "general", want: models.IntentGeneral},
		{name: "uppercase with newline", reply: "JOB\n", want: models.IntentJob},
		{name: "quoted with period", reply: "'General'.", want: models.IntentGeneral},
		{name: "double quoted", reply: `"job"`, want: models.IntentJob},
		{name: "unknown token", reply: "maybe", wantErr: true},
		{name: "sentence", reply: "This is a job question", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := replying(tt.reply, nil)
			c := NewClassifier(llm, models.IntentGeneral, arbor.NewLogger())

			intent, err := c.Classify(context.Background(), "How many leave days do I get?")
			assert.Equal(t, 1, llm.calls)

			if tt.wantErr {
				var classErr *ClassificationError
				require.ErrorAs(t, err, &classErr)
				assert.Equal(t, tt.reply, classErr.Reply)
				assert.Empty(t, intent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, intent)
		})
	}
}

func TestClassify_SendsFixedInstruction(t *testing.T) {
	var got []interfaces.Message
	llm := &mockLLM{
		chatFunc: func(ctx context.Context, messages []interfaces.Message) (string, error) {
			got = messages
			return "general", nil
		},
	}

	_, err := NewClassifier(llm, "", arbor.NewLogger()).Classify(context.Background(), "hello there")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, interfaces.RoleSystem, got[0].Role)
	assert.Equal(t, SystemPrompt, got[0].Content)
	assert.Equal(t, interfaces.RoleUser, got[1].Role)
	assert.Equal(t, "User input: hello there\n\nClassify the input:", got[1].Content)
}

func TestClassify_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	c := NewClassifier(replying("", cause), models.IntentGeneral, arbor.NewLogger())

	_, err := c.Classify(context.Background(), "benefits")

	var classErr *ClassificationError
	require.ErrorAs(t, err, &classErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "benefits", classErr.Query)
}

func TestClassifyOrFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		reply    string
		chatErr  error
		want     string
		wantErr  bool
	}{
		{name: "success passes through", fallback: models.IntentGeneral, reply: "job", want: models.IntentJob},
		{name: "unknown reply falls back", fallback: models.IntentGeneral, reply: "maybe", want: models.IntentGeneral, wantErr: true},
		{name: "transport failure falls back", fallback: models.IntentGeneral, chatErr: errors.New("timeout"), want: models.IntentGeneral, wantErr: true},
		{name: "configured job fallback", fallback: models.IntentJob, reply: "maybe", want: models.IntentJob, wantErr: true},
		{name: "invalid fallback becomes general", fallback: "other", reply: "maybe", want: models.IntentGeneral, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(replying(tt.reply, tt.chatErr), tt.fallback, arbor.NewLogger())

			intent, err := c.ClassifyOrFallback(context.Background(), "query")
			assert.Equal(t, tt.want, intent)
			if tt.wantErr {
				var classErr *ClassificationError
				assert.ErrorAs(t, err, &classErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseReply(t *testing.T) {
	assert.Equal(t, "job", ParseReply("  Job! "))
	assert.Equal(t, "general", ParseReply("`general`"))
	assert.Equal(t, "", ParseReply("..."))
}
