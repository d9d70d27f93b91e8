// Package conversation holds the in-process, append-only message log.
// Session history is deliberately not persisted across restarts.
package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/docchat/internal/core/domain"
)

type Log struct {
	mu       sync.RWMutex
	lastID   int64
	messages []domain.Message
}

func NewLog() *Log {
	return &Log{}
}

// Append records a turn at the end of the log and assigns its identity.
// IDs increase monotonically, so they double as the total order and as a
// stable rendering key. An invalid role is a programmer error.
func (l *Log) Append(role domain.Role, text string) domain.Message {
	if !role.Valid() {
		panic(fmt.Sprintf("conversation: invalid role %q", role))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastID++
	msg := domain.Message{
		ID:        l.lastID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// Snapshot returns a copy of the log in insertion order.
func (l *Log) Snapshot() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}
