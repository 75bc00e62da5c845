package chat

import (
	"sync"

	"github.com/ternarybob/onboard/internal/interfaces"
)

// Conversation is a bounded window of recent turns. A turn starts at a user
// message and holds the replies that follow it. Appending past the capacity
// evicts the oldest whole turn first, so the window never opens on a reply.
type Conversation struct {
	mu       sync.Mutex
	capacity int
	messages []interfaces.Message
}

// NewConversation creates a window holding at most capacity turns.
// A capacity of zero keeps no history.
func NewConversation(capacity int) *Conversation {
	if capacity < 0 {
		capacity = 0
	}
	return &Conversation{
		capacity: capacity,
		messages: make([]interfaces.Message, 0, 2*capacity),
	}
}

// Append adds messages in order, evicting whole turns from the front as needed
func (c *Conversation) Append(messages ...interfaces.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}
	c.messages = append(c.messages, messages...)

	starts := turnStarts(c.messages)
	if over := len(starts) - c.capacity; over > 0 {
		c.messages = append(c.messages[:0], c.messages[starts[over]:]...)
	}
}

// turnStarts returns the index of the first message of each turn.
// Leading replies with no user message before them form one turn.
func turnStarts(messages []interfaces.Message) []int {
	var starts []int
	for i, m := range messages {
		if i == 0 || m.Role == interfaces.RoleUser {
			starts = append(starts, i)
		}
	}
	return starts
}

// Recent returns a copy of the window, oldest first
func (c *Conversation) Recent() []interfaces.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]interfaces.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Turns returns the number of turns held
func (c *Conversation) Turns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(turnStarts(c.messages))
}

// Len returns the number of messages held
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Capacity returns the window size in turns
func (c *Conversation) Capacity() int {
	return c.capacity
}

// Clear drops all messages
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:0]
}
