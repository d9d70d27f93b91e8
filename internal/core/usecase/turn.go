package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/docchat/internal/core/domain"
	"github.com/kirillkom/docchat/internal/core/ports"
)

// ErrorNoticeText is appended as the assistant turn when the generation
// request itself fails. It is deliberately distinct from the generation
// client's fallback text, which covers a reply without usable content.
const ErrorNoticeText = "Something went wrong while generating a response. Please try sending your message again."

// TurnController owns one chat session: the conversation log, the retained
// document text, and the idle/awaiting-response gate. Only the controller
// mutates session state.
type TurnController struct {
	log       ports.ConversationLog
	extractor ports.TextExtractor
	generator ports.ReplyGenerator

	mu           sync.Mutex
	state        domain.InteractionState
	documentText string
}

func NewTurnController(
	log ports.ConversationLog,
	extractor ports.TextExtractor,
	generator ports.ReplyGenerator,
) *TurnController {
	return &TurnController{
		log:       log,
		extractor: extractor,
		generator: generator,
		state:     domain.StateIdle,
	}
}

// Send runs one full interaction cycle. Whitespace-only input is rejected
// with domain.ErrEmptyInput before anything is recorded. While a prior
// cycle is awaiting its response, a send is rejected with domain.ErrBusy
// rather than queued, so assistant replies can never interleave.
//
// Generation failures do not propagate: the cycle still completes with an
// error-notice assistant turn and GenerationFailed set on the exchange.
func (tc *TurnController) Send(ctx context.Context, text string) (*domain.Exchange, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "send", fmt.Errorf("nothing to send"))
	}

	tc.mu.Lock()
	if tc.state == domain.StateAwaitingResponse {
		tc.mu.Unlock()
		return nil, domain.WrapError(domain.ErrBusy, "send", fmt.Errorf("previous request is still awaiting a response"))
	}
	tc.state = domain.StateAwaitingResponse
	// Capture at dispatch time: an upload landing while this request is in
	// flight must not change the prompt already being composed.
	documentText := tc.documentText
	tc.mu.Unlock()

	defer func() {
		tc.mu.Lock()
		tc.state = domain.StateIdle
		tc.mu.Unlock()
	}()

	userMsg := tc.log.Append(domain.RoleUser, input)

	reply, err := tc.generator.Generate(ctx, ComposePrompt(input, documentText))
	if err != nil {
		slog.Error("generation_failed", "message_id", userMsg.ID, "error", err)
		assistantMsg := tc.log.Append(domain.RoleAssistant, ErrorNoticeText)
		return &domain.Exchange{User: userMsg, Assistant: assistantMsg, GenerationFailed: true}, nil
	}

	assistantMsg := tc.log.Append(domain.RoleAssistant, reply)
	return &domain.Exchange{User: userMsg, Assistant: assistantMsg}, nil
}

// Upload extracts the document's text and, on success, replaces the
// retained document text (latest upload wins) and records a file notice.
// On failure the previous document text stays untouched and nothing is
// appended to the conversation. Uploads are not gated by the send state.
func (tc *TurnController) Upload(ctx context.Context, filename string, data []byte) (*domain.Message, error) {
	text, err := tc.extractor.Extract(ctx, data)
	if err != nil {
		slog.Warn("extraction_failed", "filename", filename, "error", err)
		return nil, err
	}

	tc.mu.Lock()
	tc.documentText = text
	tc.mu.Unlock()

	notice := tc.log.Append(domain.RoleFileNotice, fmt.Sprintf("Attached document: %s", filename))
	return &notice, nil
}

func (tc *TurnController) History(_ context.Context) []domain.Message {
	return tc.log.Snapshot()
}

func (tc *TurnController) State() domain.InteractionState {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state
}

// DocumentText reports the currently retained document text.
func (tc *TurnController) DocumentText() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.documentText
}
