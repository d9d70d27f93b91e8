package ports

import (
	"context"

	"github.com/kirillkom/docchat/internal/core/domain"
)

// ConversationLog is the append-only record of turns. Append assigns the
// message identity; insertion order is conversational order.
type ConversationLog interface {
	Append(role domain.Role, text string) domain.Message
	Snapshot() []domain.Message
}

// TextExtractor converts raw document bytes into plain text, page order
// preserved. A failed extraction must not yield a partial result.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ReplyGenerator sends a composed prompt to the remote generation endpoint.
// A reply without usable content resolves to a fixed fallback string and is
// NOT an error; only transport-level failures return one, wrapped with
// domain.ErrGeneration.
type ReplyGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
