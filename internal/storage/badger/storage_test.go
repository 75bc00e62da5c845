package badger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	cfg := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}
	db, err := NewBadgerDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testDocument(id, role string) *models.Document {
	return &models.Document{
		ID:         id,
		SourceName: id + ".md",
		Format:     models.FormatMarkdown,
		Title:      id,
		Content:    "content of " + id,
		Chunks:     []string{"content of " + id},
		Metadata:   models.Metadata{BusinessRole: role, Tags: []string{"hr"}},
	}
}

func documentIDs(docs []*models.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids
}

func TestDocumentStorage_SaveAndGet(t *testing.T) {
	storage := NewDocumentStorage(newTestDB(t), arbor.NewLogger())

	doc := testDocument("annual leave", "engineer")
	require.NoError(t, storage.SaveDocument(doc))
	assert.False(t, doc.CreatedAt.IsZero())
	assert.False(t, doc.UpdatedAt.IsZero())

	got, err := storage.GetDocument("annual leave")
	require.NoError(t, err)
	assert.Equal(t, "content of annual leave", got.Content)
	assert.Equal(t, "engineer", got.Metadata.BusinessRole)
	assert.Equal(t, []string{"hr"}, got.Metadata.Tags)

	_, err = storage.GetDocument("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")

	assert.Error(t, storage.SaveDocument(&models.Document{}))
}

func TestDocumentStorage_DeleteIsIdempotent(t *testing.T) {
	storage := NewDocumentStorage(newTestDB(t), arbor.NewLogger())

	require.NoError(t, storage.SaveDocument(testDocument("benefits", "")))
	require.NoError(t, storage.DeleteDocument("benefits"))
	require.NoError(t, storage.DeleteDocument("benefits"))

	count, err := storage.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDocumentStorage_ListDocuments(t *testing.T) {
	storage := NewDocumentStorage(newTestDB(t), arbor.NewLogger())

	require.NoError(t, storage.SaveDocuments([]*models.Document{
		testDocument("dress code", ""),
		testDocument("annual leave", "Engineer"),
		testDocument("sales targets", "sales"),
		testDocument("benefits", ""),
	}))

	tests := []struct {
		name string
		opts *interfaces.ListOptions
		want []string
	}{
		{"all sorted by id", nil, []string{"annual leave", "benefits", "dress code", "sales targets"}},
		{"role keeps shared documents", &interfaces.ListOptions{BusinessRole: "engineer"}, []string{"annual leave", "benefits", "dress code"}},
		{"limit", &interfaces.ListOptions{Limit: 2}, []string{"annual leave", "benefits"}},
		{"offset and limit", &interfaces.ListOptions{Offset: 1, Limit: 2}, []string{"benefits", "dress code"}},
		{"offset past end", &interfaces.ListOptions{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := storage.ListDocuments(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, documentIDs(docs))
		})
	}
}

func TestDocumentStorage_ReplaceAll(t *testing.T) {
	storage := NewDocumentStorage(newTestDB(t), arbor.NewLogger())

	first := testDocument("annual leave", "")
	require.NoError(t, storage.SaveDocuments([]*models.Document{first, testDocument("old policy", "")}))
	created := first.CreatedAt

	time.Sleep(5 * time.Millisecond)
	updated := testDocument("annual leave", "")
	updated.Content = "new leave policy"
	require.NoError(t, storage.ReplaceAll([]*models.Document{updated, testDocument("benefits", "")}))

	docs, err := storage.ListDocuments(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"annual leave", "benefits"}, documentIDs(docs))

	got, err := storage.GetDocument("annual leave")
	require.NoError(t, err)
	assert.Equal(t, "new leave policy", got.Content)
	assert.True(t, got.CreatedAt.Equal(created), "CreatedAt should survive a replace")
	assert.True(t, got.UpdatedAt.After(created))

	assert.Error(t, storage.ReplaceAll([]*models.Document{{ID: ""}}))
}

func TestDocumentStorage_ClearAll(t *testing.T) {
	storage := NewDocumentStorage(newTestDB(t), arbor.NewLogger())

	require.NoError(t, storage.SaveDocuments([]*models.Document{testDocument("a", ""), testDocument("b", "")}))
	count, err := storage.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, storage.ClearAll())
	count, err = storage.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestInteractionStorage(t *testing.T) {
	storage := NewInteractionStorage(newTestDB(t), arbor.NewLogger())

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []*models.Interaction{
		{SessionID: "sess_a", Query: "first", Intent: models.IntentGeneral, CreatedAt: base},
		{SessionID: "sess_b", Query: "second", Intent: models.IntentJob, CreatedAt: base.Add(time.Minute)},
		{SessionID: "sess_a", Query: "third", Intent: models.IntentJob, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, record := range records {
		require.NoError(t, storage.SaveInteraction(record))
		assert.NotEmpty(t, record.ID)
	}

	t.Run("get", func(t *testing.T) {
		got, err := storage.GetInteraction(records[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Query)

		_, err = storage.GetInteraction("int_missing")
		assert.Error(t, err)
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := storage.ListInteractions(&interfaces.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "third", list[0].Query)
		assert.Equal(t, "second", list[1].Query)
	})

	t.Run("by session", func(t *testing.T) {
		list, err := storage.ListBySession("sess_a", 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "third", list[0].Query)
		assert.Equal(t, "first", list[1].Query)
	})

	t.Run("count", func(t *testing.T) {
		count, err := storage.CountInteractions()
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("delete older than", func(t *testing.T) {
		deleted, err := storage.DeleteOlderThan(base.Add(90 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		list, err := storage.ListInteractions(nil)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "third", list[0].Query)

		deleted, err = storage.DeleteOlderThan(base)
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})

	assert.Error(t, storage.SaveInteraction(nil))
}

func TestEmbeddingCache(t *testing.T) {
	cache := NewEmbeddingCache(newTestDB(t), arbor.NewLogger())

	vector, ok, err := cache.GetEmbedding("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, vector)

	require.NoError(t, cache.SaveEmbedding("k1", "local", []float32{0.6, 0.8}))
	require.NoError(t, cache.SaveEmbedding("k2", "local", []float32{1, 0}))
	assert.Error(t, cache.SaveEmbedding("", "local", []float32{1}))

	vector, ok, err = cache.GetEmbedding("k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{0.6, 0.8}, vector)

	removed, err := cache.ClearEmbeddings()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err = cache.GetEmbedding("k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_InMemory(t *testing.T) {
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer manager.Close()

	require.NoError(t, manager.DocumentStorage().SaveDocument(testDocument("benefits", "")))
	count, err := manager.DocumentStorage().CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Document and interaction records share the store without colliding
	require.NoError(t, manager.InteractionStorage().SaveInteraction(&models.Interaction{ID: "benefits", Query: "q"}))
	count, err = manager.DocumentStorage().CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NotNil(t, manager.EmbeddingCache())
	assert.NotNil(t, manager.DB())
}

func TestNewBadgerDB_RequiresPath(t *testing.T) {
	_, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	cfg := &common.BadgerConfig{Path: path}

	db, err := NewBadgerDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, NewDocumentStorage(db, arbor.NewLogger()).SaveDocument(testDocument("a", "")))
	require.NoError(t, db.Close())

	cfg.ResetOnStartup = true
	db, err = NewBadgerDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	defer db.Close()

	count, err := NewDocumentStorage(db, arbor.NewLogger()).CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
