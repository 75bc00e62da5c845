package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
)

func newTestFactory(mutate func(cfg *common.Config)) *ProviderFactory {
	cfg := common.NewDefaultConfig()
	cfg.Gemini.RateLimit = ""
	cfg.Claude.RateLimit = ""
	if mutate != nil {
		mutate(cfg)
	}
	return NewProviderFactory(cfg, arbor.NewLogger())
}

func TestDetectProvider(t *testing.T) {
	f := newTestFactory(nil)

	tests := []struct {
		model string
		want  ProviderType
	}{
		{model: "", want: ProviderGemini},
		{model: "claude-haiku-4-5", want: ProviderClaude},
		{model: "anthropic/claude-haiku-4-5", want: ProviderClaude},
		{model: "gemini-2.5-flash", want: ProviderGemini},
		{model: "google/gemini-2.5-flash", want: ProviderGemini},
		{model: "something-else", want: ProviderGemini},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, f.DetectProvider(tt.model))
		})
	}
}

func TestNormalizeModel(t *testing.T) {
	f := newTestFactory(nil)
	assert.Equal(t, "claude-haiku-4-5", f.NormalizeModel("claude/claude-haiku-4-5"))
	assert.Equal(t, "gemini-2.5-flash", f.NormalizeModel("Gemini/gemini-2.5-flash"))
	assert.Equal(t, "plain", f.NormalizeModel("plain"))
}

func TestGenerateContent_MissingAPIKey(t *testing.T) {
	f := newTestFactory(func(cfg *common.Config) {
		cfg.Gemini.APIKey = ""
		cfg.Claude.APIKey = ""
	})

	_, err := f.GenerateContent(context.Background(), &ContentRequest{
		Messages: []interfaces.Message{{Role: interfaces.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = f.GenerateContent(context.Background(), &ContentRequest{
		Model:    "claude-haiku-4-5",
		Messages: []interfaces.Message{{Role: interfaces.RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCallWithRetry_NoRetryByDefault(t *testing.T) {
	f := newTestFactory(nil)

	var calls int32
	err := f.callWithRetry(context.Background(), ProviderGemini, f.geminiLimiter, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCallWithRetry_TimeoutSurfacesAsErrTimeout(t *testing.T) {
	f := newTestFactory(func(cfg *common.Config) {
		cfg.LLM.Timeout = "20ms"
	})

	err := f.callWithRetry(context.Background(), ProviderGemini, f.geminiLimiter, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallWithRetry_RetriesWhenConfigured(t *testing.T) {
	f := newTestFactory(func(cfg *common.Config) {
		cfg.LLM.MaxRetries = 1
	})
	f.retry.InitialBackoff = time.Millisecond

	var calls int32
	err := f.callWithRetry(context.Background(), ProviderGemini, f.geminiLimiter, func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("Error 429 RESOURCE_EXHAUSTED")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
