package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a unique chat session ID
// Format: sess_<uuid>
func NewSessionID() string {
	return "sess_" + uuid.New().String()
}

// NewInteractionID generates a unique interaction log ID
// Format: int_<uuid>
func NewInteractionID() string {
	return "int_" + uuid.New().String()
}
