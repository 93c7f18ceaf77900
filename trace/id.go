package trace

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewTraceID returns a 128-bit trace identifier as 32 lowercase hex
// characters.
func NewTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// NewSpanID returns a 64-bit span identifier as 16 lowercase hex
// characters.
func NewSpanID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}
