package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/onboard/internal/interfaces"
)

func userMessage(i int) interfaces.Message {
	return interfaces.Message{Role: interfaces.RoleUser, Content: fmt.Sprintf("message %d", i)}
}

func TestConversation_EvictsOldestFirst(t *testing.T) {
	c := NewConversation(3)
	for i := 0; i < 10; i++ {
		c.Append(userMessage(i))
	}

	recent := c.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "message 7", recent[0].Content)
	assert.Equal(t, "message 8", recent[1].Content)
	assert.Equal(t, "message 9", recent[2].Content)
}

func TestConversation_AppendMany(t *testing.T) {
	c := NewConversation(3)
	c.Append(userMessage(0), userMessage(1))
	c.Append(userMessage(2), userMessage(3))

	recent := c.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "message 1", recent[0].Content)
	assert.Equal(t, "message 3", recent[2].Content)
}

func TestConversation_ZeroCapacity(t *testing.T) {
	c := NewConversation(0)
	c.Append(userMessage(0))
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Recent())

	assert.Equal(t, 0, NewConversation(-1).Capacity())
}

func TestConversation_RecentIsACopy(t *testing.T) {
	c := NewConversation(2)
	c.Append(userMessage(0))

	recent := c.Recent()
	recent[0].Content = "changed"

	assert.Equal(t, "message 0", c.Recent()[0].Content)
}

func TestConversation_Clear(t *testing.T) {
	c := NewConversation(3)
	c.Append(userMessage(0), userMessage(1))
	c.Clear()
	assert.Equal(t, 0, c.Len())

	c.Append(userMessage(2))
	assert.Equal(t, 1, c.Len())
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	c := NewConversation(3)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Append(userMessage(i))
			_ = c.Recent()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, c.Len())
}

func TestConversation_EvictsWholeTurns(t *testing.T) {
	c := NewConversation(3)
	for i := 0; i < 5; i++ {
		c.Append(
			interfaces.Message{Role: interfaces.RoleUser, Content: fmt.Sprintf("question %d", i)},
			interfaces.Message{Role: interfaces.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}

	recent := c.Recent()
	require.Len(t, recent, 6)
	assert.Equal(t, 3, c.Turns())
	assert.Equal(t, interfaces.RoleUser, recent[0].Role)
	assert.Equal(t, "question 2", recent[0].Content)
	assert.Equal(t, "answer 4", recent[5].Content)
}

func TestConversation_LeadingReplyFormsOneTurn(t *testing.T) {
	c := NewConversation(1)
	c.Append(interfaces.Message{Role: interfaces.RoleAssistant, Content: "welcome"})
	assert.Equal(t, 1, c.Turns())

	c.Append(userMessage(0), interfaces.Message{Role: interfaces.RoleAssistant, Content: "reply"})

	recent := c.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "message 0", recent[0].Content)
}
