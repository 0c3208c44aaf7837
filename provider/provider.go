package provider

import (
	"context"
	"time"
)

// Completion is one chat-completion call: exactly one system message and one
// user message.
type Completion struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Complete(ctx context.Context, c Completion) (string, error)
}
