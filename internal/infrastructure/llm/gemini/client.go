// Package gemini talks to the remote generateContent endpoint.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/docchat/internal/core/domain"
	"github.com/kirillkom/docchat/internal/infrastructure/resilience"
)

// FallbackReplyText is returned when the service replied but the expected
// candidate text is absent (malformed shape, empty candidate list, or a
// moderation block). That outcome is success-with-text, not an error.
const FallbackReplyText = "I couldn't come up with an answer for that. Try rephrasing your question."

type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New builds a client for the generation endpoint. The HTTP client carries
// no timeout: a turn waits as long as the remote takes to answer.
func New(baseURL, model, apiKey string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		executor:   executor,
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *googleSearch `json:"google_search,omitempty"`
}

type googleSearch struct{}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the composed prompt as the sole user turn, with the
// service's web-search augmentation enabled. Transport failures, non-2xx
// statuses, and unparseable bodies surface as domain.ErrGeneration; a
// parsed reply without usable text resolves to FallbackReplyText instead.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	request := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		Tools: []tool{{GoogleSearch: &googleSearch{}}},
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)

	var response generateContentResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, path, request, &response, "generate")
	}
	if err := c.executor.Execute(ctx, "gemini.generate", call, classifyGenerationError); err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "generate content", err)
	}

	text, ok := decodeReply(response)
	if !ok {
		return FallbackReplyText, nil
	}
	return text, nil
}

// decodeReply probes the documented reply path, candidates[0].content.
// parts[0].text, as an explicit tagged result so "no data" never gets
// conflated with a usable reply.
func decodeReply(response generateContentResponse) (string, bool) {
	if len(response.Candidates) == 0 {
		return "", false
	}
	parts := response.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", false
	}
	text := strings.TrimSpace(parts[0].Text)
	if text == "" {
		return "", false
	}
	return text, true
}
