package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/services/retrieval"
)

func testConfig(t *testing.T, docsDir string) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.InMemory = true
	cfg.Embeddings.Provider = common.EmbeddingProviderLocal
	cfg.Embeddings.Dimension = 64
	cfg.Chat.ComposeAnswers = false
	cfg.Documents.Dir = docsDir
	return cfg
}

func TestNew_RawModeAnswersFromDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Annual Leave.md"), []byte("# Annual Leave\n\nEmployees receive twenty five vacation days."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IT Security.txt"), []byte("Connect through the VPN client."), 0644))

	application, err := New(testConfig(t, dir), arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, 2, application.IndexHolder.Load().Len())

	count, err := application.StorageManager.DocumentStorage().CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	session := application.Sessions.GetOrCreate("")
	answer, err := application.OnboardingService.HandleQuery(context.Background(), "Annual Leave", session)
	require.NoError(t, err)
	assert.Equal(t, "annual leave", answer.DocumentID)
	assert.Equal(t, retrieval.SignalFuzzy, answer.Signal)
	assert.Contains(t, answer.Text, "twenty five vacation days")

	logged, err := application.StorageManager.InteractionStorage().ListBySession(session.ID, 0)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "annual leave", logged[0].DocumentID)

	require.NoError(t, application.StartBackground())
	require.NoError(t, application.StartBackground())
}

func TestNew_MissingDocumentsDir(t *testing.T) {
	application, err := New(testConfig(t, filepath.Join(t.TempDir(), "missing")), arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	assert.Nil(t, application.IndexHolder.Load())
	assert.NotEmpty(t, application.IngestService.Status().LastError)
}

func TestNew_SkipsStartupIngest(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Ingest.OnStartup = false

	application, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	assert.Nil(t, application.IndexHolder.Load())
	assert.True(t, application.IngestService.Status().LastRun.IsZero())
}

func TestNew_GeminiEmbeddingsWithoutKeyFallBack(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := testConfig(t, t.TempDir())
	cfg.Embeddings.Provider = common.EmbeddingProviderGemini
	cfg.Gemini.APIKey = ""

	application, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, cfg.Embeddings.Dimension, application.EmbeddingService.Dimension())
}
