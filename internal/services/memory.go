package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/basedoracle/oracle-web-ui/internal/models"
)

// Memory implements the conversation store with plain in-process state. Conversations are keyed
// by session ID and live for the lifetime of the process; there is no persistence. Each session
// owns its ordered, append-only message sequence.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]models.Message
}

// NewMemory creates an empty in-memory conversation store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string][]models.Message),
	}
}

// Messages returns a copy of the session's message sequence in insertion order. An unknown
// session yields an empty slice, not an error.
func (m *Memory) Messages(_ context.Context, sessionID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.sessions[sessionID]), nil
}

// AppendMessage adds a message to the end of the session's sequence and returns its ID.
func (m *Memory) AppendMessage(_ context.Context, sessionID string, message models.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = append(m.sessions[sessionID], message)
	return message.ID, nil
}

// UpdateMessage replaces the stored message with the same ID. It exists for streaming: the
// placeholder assistant message accumulates fragments as they arrive. Updating a message that
// was never appended is an error.
func (m *Memory) UpdateMessage(_ context.Context, sessionID string, message models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.sessions[sessionID]
	idx := slices.IndexFunc(msgs, func(msg models.Message) bool { return msg.ID == message.ID })
	if idx == -1 {
		return fmt.Errorf("message %s not found in session %s", message.ID, sessionID)
	}
	msgs[idx] = message
	return nil
}

// Reset discards the session's messages and seeds it with exactly one assistant welcome message,
// which is returned.
func (m *Memory) Reset(_ context.Context, sessionID string) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	welcome := models.NewWelcomeMessage()
	m.sessions[sessionID] = []models.Message{welcome}
	return welcome, nil
}
