package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder(256)

	first, err := e.Embed(context.Background(), []string{"annual leave policy"})
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), []string{"annual leave policy"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first[0], 256)
	assert.Equal(t, 256, e.Dimension())
	assert.Equal(t, "local-hash", e.ModelName())
}

func TestLocalEmbedder_RelatedTextsAreCloser(t *testing.T) {
	e := NewLocalEmbedder(512)

	vectors, err := e.Embed(context.Background(), []string{
		"How many days of annual leave do employees get?",
		"Annual leave: employees receive 25 days of leave per year.",
		"Configure your laptop VPN client before first login.",
	})
	require.NoError(t, err)

	query := Normalize(vectors[0])
	leave := Normalize(vectors[1])
	vpn := Normalize(vectors[2])

	assert.Greater(t, Dot(query, leave), Dot(query, vpn))
}

func TestLocalEmbedder_StopwordsOnly(t *testing.T) {
	e := NewLocalEmbedder(64)

	vectors, err := e.Embed(context.Background(), []string{"the and of"})
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 64), vectors[0])
}

func TestLocalEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalEmbedder(64).Embed(ctx, []string{"text"})
	assert.ErrorIs(t, err, context.Canceled)
}
