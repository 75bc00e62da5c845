package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/classifier"
	"github.com/ternarybob/onboard/internal/services/corpus"
	"github.com/ternarybob/onboard/internal/services/retrieval"
)

const benefitsText = "Health insurance covers dental and vision. Enrol within thirty days of joining."

// memoryInteractions is an in-memory interfaces.InteractionStorage
type memoryInteractions struct {
	mu      sync.Mutex
	saved   []*models.Interaction
	saveErr error
}

func (m *memoryInteractions) SaveInteraction(interaction *models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, interaction)
	return nil
}

func (m *memoryInteractions) GetInteraction(id string) (*models.Interaction, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryInteractions) ListInteractions(opts *interfaces.ListOptions) ([]*models.Interaction, error) {
	return m.saved, nil
}

func (m *memoryInteractions) ListBySession(sessionID string, limit int) ([]*models.Interaction, error) {
	return nil, nil
}

func (m *memoryInteractions) CountInteractions() (int, error) {
	return len(m.saved), nil
}

func (m *memoryInteractions) DeleteOlderThan(cutoff time.Time) (int, error) {
	return 0, nil
}

// scriptedLLM answers classification calls with intent and every other call with answer
func scriptedLLM(intent string, answer string, composeErr error) *mockLLM {
	return &mockLLM{chatFunc: func(ctx context.Context, messages []interfaces.Message) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if messages[0].Content == classifier.SystemPrompt {
			return intent, nil
		}
		return answer, composeErr
	}}
}

type testService struct {
	service      *OnboardingService
	llm          *mockLLM
	interactions *memoryInteractions
	holder       *corpus.Holder
}

func newTestService(t *testing.T, llm *mockLLM, mutate func(cfg *common.Config)) *testService {
	t.Helper()
	cfg := common.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger := arbor.NewLogger()

	idx, err := corpus.NewBuilder(corpus.OptionsFromConfig(cfg), nil, nil, logger).Build(context.Background(), []models.SourceDocument{
		{Name: "Annual Leave.docx", Text: "Employees receive twenty five vacation days each year. Submit vacation requests to your team lead."},
		{Name: "IT Security.pdf", Text: "VPN setup guide: install the VPN client and connect before opening email."},
		{Name: "Benefits.md", Text: benefitsText, Metadata: models.Metadata{Module: "benefits_basics"}},
	})
	require.NoError(t, err)

	holder := corpus.NewHolder()
	holder.Swap(idx)

	interactions := &memoryInteractions{}
	service := NewOnboardingService(
		cfg.Chat,
		classifier.NewClassifier(llm, cfg.Classifier.FallbackIntent, logger),
		retrieval.NewRetriever(retrieval.ConfigFromCommon(&cfg.Retrieval), nil, logger),
		holder,
		NewComposer(llm, cfg.Chat.DefaultTopic, logger),
		interactions,
		logger,
	)

	return &testService{service: service, llm: llm, interactions: interactions, holder: holder}
}

func TestHandleQuery_GeneralSkipsRetrieval(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "Hi there!", nil), nil)
	session := ts.service.NewSession()

	answer, err := ts.service.HandleQuery(context.Background(), "Hello!", session)
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", answer.Text)
	assert.Equal(t, models.IntentGeneral, answer.Intent)
	assert.Empty(t, answer.DocumentID)
	assert.Empty(t, answer.ErrorKind)
	assert.Equal(t, session.ID, answer.SessionID)

	require.Equal(t, 2, ts.llm.callCount())
	assert.Equal(t, GeneralSystemPrompt, ts.llm.lastCall()[0].Content)

	assert.Equal(t, 2, session.Conversation().Len())
}

func TestHandleQuery_JobGroundsOnMatchedDocument(t *testing.T) {
	ts := newTestService(t, scriptedLLM("job", "You can enrol within thirty days.", nil), nil)

	answer, err := ts.service.HandleQuery(context.Background(), "Benefits", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentJob, answer.Intent)
	assert.Equal(t, "benefits", answer.DocumentID)
	assert.Equal(t, retrieval.SignalFuzzy, answer.Signal)
	assert.Equal(t, 1.0, answer.Score)
	assert.Equal(t, "You can enrol within thirty days.", answer.Text)

	system := ts.llm.lastCall()[0].Content
	assert.Contains(t, system, benefitsText)
	assert.Contains(t, system, "related to benefits_basics.")
}

func TestHandleQuery_SessionTopicAndRole(t *testing.T) {
	ts := newTestService(t, scriptedLLM("job", "ok", nil), nil)
	session := ts.service.NewSession()
	session.SetTopic("first_week")
	session.SetBusinessRole("Data Scientist")

	_, err := ts.service.HandleQuery(context.Background(), "Benefits", session)
	require.NoError(t, err)

	system := ts.llm.lastCall()[0].Content
	assert.Contains(t, system, "related to first_week.")
	assert.Contains(t, system, "Data Scientist")

	require.Len(t, ts.interactions.saved, 1)
	assert.Equal(t, "Data Scientist", ts.interactions.saved[0].BusinessRole)
}

func TestHandleQuery_JobWithoutMatchUsesGeneralPrompt(t *testing.T) {
	ts := newTestService(t, scriptedLLM("job", "I am not sure, please ask HR.", nil), nil)

	answer, err := ts.service.HandleQuery(context.Background(), "zzz qqq", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentJob, answer.Intent)
	assert.Empty(t, answer.DocumentID)
	assert.Equal(t, retrieval.SignalNone, answer.Signal)
	assert.Equal(t, GeneralSystemPrompt, ts.llm.lastCall()[0].Content)
}

func TestHandleQuery_EmptyIndex(t *testing.T) {
	ts := newTestService(t, scriptedLLM("job", "ok", nil), nil)
	ts.holder.Swap(nil)

	answer, err := ts.service.HandleQuery(context.Background(), "Benefits", nil)
	require.NoError(t, err)
	assert.Empty(t, answer.DocumentID)
	assert.Equal(t, "ok", answer.Text)
}

func TestHandleQuery_ClassificationFailureFallsBack(t *testing.T) {
	ts := newTestService(t, scriptedLLM("maybe", "Happy to help.", nil), nil)

	answer, err := ts.service.HandleQuery(context.Background(), "Benefits", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentGeneral, answer.Intent)
	assert.Equal(t, models.ErrorKindClassification, answer.ErrorKind)
	assert.Empty(t, answer.DocumentID)
	assert.Equal(t, "Happy to help.", answer.Text)
}

func TestHandleQuery_CompositionFailureHidesTransportDetail(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "", errors.New("dial tcp 10.0.0.1:443: i/o timeout")), nil)
	session := ts.service.NewSession()

	answer, err := ts.service.HandleQuery(context.Background(), "Hello", session)
	require.NoError(t, err)

	assert.Equal(t, UnavailableText, answer.Text)
	assert.NotContains(t, answer.Text, "dial tcp")
	assert.Equal(t, models.ErrorKindComposition, answer.ErrorKind)
	assert.Equal(t, 0, session.Conversation().Len())

	require.Len(t, ts.interactions.saved, 1)
	assert.Equal(t, models.ErrorKindComposition, ts.interactions.saved[0].ErrorKind)
}

func TestHandleQuery_HistoryWindow(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "answer", nil), nil)
	session := ts.service.NewSession()

	for _, q := range []string{"one", "two", "three", "four"} {
		_, err := ts.service.HandleQuery(context.Background(), q, session)
		require.NoError(t, err)
	}

	// system + three whole turns + current query
	last := ts.llm.lastCall()
	require.Len(t, last, 8)
	assert.Equal(t, "one", last[1].Content)
	assert.Equal(t, interfaces.RoleUser, last[1].Role)
	assert.Equal(t, "answer", last[2].Content)
	assert.Equal(t, "three", last[5].Content)
	assert.Equal(t, "four", last[7].Content)

	recent := session.Conversation().Recent()
	assert.Equal(t, 3, session.Conversation().Turns())
	require.Len(t, recent, 6)
	assert.Equal(t, interfaces.RoleUser, recent[0].Role)
	assert.Equal(t, "two", recent[0].Content)
}

func TestHandleQuery_RawMode(t *testing.T) {
	llm := scriptedLLM("general", "never used", nil)
	ts := newTestService(t, llm, func(cfg *common.Config) {
		cfg.Chat.ComposeAnswers = false
	})

	answer, err := ts.service.HandleQuery(context.Background(), "Benefits", nil)
	require.NoError(t, err)
	assert.Equal(t, benefitsText, answer.Text)
	assert.Equal(t, "benefits", answer.DocumentID)

	answer, err = ts.service.HandleQuery(context.Background(), "zzz qqq", nil)
	require.NoError(t, err)
	assert.Equal(t, NoMatchText, answer.Text)
	assert.Empty(t, answer.DocumentID)

	assert.Equal(t, 0, llm.callCount())
}

func TestHandleQuery_RecordsInteraction(t *testing.T) {
	ts := newTestService(t, scriptedLLM("job", "Answer text", nil), nil)
	session := ts.service.NewSession()

	answer, err := ts.service.HandleQuery(context.Background(), "  Benefits  ", session)
	require.NoError(t, err)

	require.Len(t, ts.interactions.saved, 1)
	got := ts.interactions.saved[0]
	assert.Equal(t, answer.InteractionID, got.ID)
	assert.Equal(t, session.ID, got.SessionID)
	assert.Equal(t, "Benefits", got.Query)
	assert.Equal(t, models.IntentJob, got.Intent)
	assert.Equal(t, "benefits", got.DocumentID)
	assert.Equal(t, "fuzzy", got.Signal)
	assert.Equal(t, "Answer text", got.Answer)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestHandleQuery_InteractionLogFailureIsNotFatal(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "fine", nil), nil)
	ts.interactions.saveErr = errors.New("disk full")

	answer, err := ts.service.HandleQuery(context.Background(), "Hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", answer.Text)
	assert.Empty(t, answer.InteractionID)
}

func TestHandleQuery_EmptyQuery(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "fine", nil), nil)

	_, err := ts.service.HandleQuery(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 0, ts.llm.callCount())
}

func TestHandleQuery_CancelledContext(t *testing.T) {
	ts := newTestService(t, scriptedLLM("general", "fine", nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ts.service.HandleQuery(ctx, "Hello", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ts.interactions.saved)
}
