package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestNewSession(t *testing.T) {
	s := NewSession("", 3)
	assert.True(t, strings.HasPrefix(s.ID, "sess_"))
	assert.Equal(t, 3, s.Conversation().Capacity())

	named := NewSession("abc", 1)
	assert.Equal(t, "abc", named.ID)

	named.SetBusinessRole("Data Scientist")
	named.SetTopic("onboarding_week_one")
	assert.Equal(t, "Data Scientist", named.BusinessRole())
	assert.Equal(t, "onboarding_week_one", named.Topic())
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store := NewSessionStore(3, time.Minute, arbor.NewLogger())

	first := store.GetOrCreate("")
	again := store.GetOrCreate(first.ID)
	assert.Same(t, first, again)

	other := store.GetOrCreate("")
	assert.NotEqual(t, first.ID, other.ID)

	explicit := store.GetOrCreate("client-chosen")
	assert.Equal(t, "client-chosen", explicit.ID)
	assert.Equal(t, 3, store.Len())

	got, ok := store.Get("client-chosen")
	require.True(t, ok)
	assert.Same(t, explicit, got)

	store.Delete("client-chosen")
	_, ok = store.Get("client-chosen")
	assert.False(t, ok)
}

func TestSessionStore_Prune(t *testing.T) {
	store := NewSessionStore(3, time.Minute, arbor.NewLogger())
	store.GetOrCreate("a")
	store.GetOrCreate("b")

	assert.Equal(t, 0, store.Prune(time.Now()))
	assert.Equal(t, 2, store.Prune(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_PruneDisabled(t *testing.T) {
	store := NewSessionStore(3, 0, arbor.NewLogger())
	store.GetOrCreate("a")

	assert.Equal(t, 0, store.Prune(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, store.Len())
}
