package models

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an individual communication entry within a conversation. It contains the core
// components of a chat message including its unique identifier, the participant's role, the actual
// content, and the precise time when the message was created. Content may carry markdown markup which
// the renderer interprets; the completion backend treats it as opaque text.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a message authored by the person chatting.
	RoleUser Role = "user"
	// RoleAssistant represents a message generated by the completion backend.
	RoleAssistant Role = "assistant"
)

// Streaming states used by the renderer to track an in-flight assistant reply. The state lives
// outside the message itself; messages are never mutated after creation except through the
// streaming accumulation of the latest assistant reply.
const (
	StreamingStateLoading   = "loading"
	StreamingStateStreaming = "streaming"
	StreamingStateEnded     = "ended"
)

const welcomeText = "I'm Base Oracle, your intelligent AI agent for the Base blockchain ecosystem. " +
	"I can help you with:\n\n" +
	"- **Onchain Analytics** - Real-time blockchain data and insights\n" +
	"- **Wallet Intelligence** - Analyze wallets and portfolio performance\n" +
	"- **DeFi Insights** - Track protocols, yields, and opportunities\n" +
	"- **NFT Intelligence** - Monitor collections and trends\n" +
	"- **Social Feeds** - Latest updates from Base community\n\n" +
	"What would you like to explore?"

// NewWelcomeMessage returns the assistant message every fresh conversation is seeded with.
func NewWelcomeMessage() Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   welcomeText,
		Timestamp: time.Now(),
	}
}
