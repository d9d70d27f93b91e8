package ports

import (
	"context"

	"github.com/kirillkom/docchat/internal/core/domain"
)

// ChatService is the inbound contract for the send/history boundary.
type ChatService interface {
	Send(ctx context.Context, text string) (*domain.Exchange, error)
	History(ctx context.Context) []domain.Message
	State() domain.InteractionState
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, data []byte) (*domain.Message, error)
}
