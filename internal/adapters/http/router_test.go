package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/docchat/internal/config"
	"github.com/kirillkom/docchat/internal/core/domain"
	"github.com/kirillkom/docchat/internal/observability/metrics"
)

type chatFake struct {
	exchange *domain.Exchange
	err      error
	history  []domain.Message
	sent     []string
}

func (f *chatFake) Send(_ context.Context, text string) (*domain.Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "send", errors.New("nothing to send"))
	}
	f.sent = append(f.sent, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.exchange, nil
}

func (f *chatFake) History(context.Context) []domain.Message {
	return f.history
}

func (f *chatFake) State() domain.InteractionState {
	return domain.StateIdle
}

type ingestorFake struct {
	notice   *domain.Message
	err      error
	filename string
	data     []byte
}

func (f *ingestorFake) Upload(_ context.Context, filename string, data []byte) (*domain.Message, error) {
	f.filename = filename
	f.data = data
	if f.err != nil {
		return nil, f.err
	}
	return f.notice, nil
}

func testConfig() config.Config {
	return config.Config{
		MaxUploadBytes:    1 << 20,
		APIRateLimitRPS:   0,
		APIRateLimitBurst: 0,
	}
}

func newTestHandler(cfg config.Config, chat *chatFake, docs *ingestorFake) http.Handler {
	return NewRouter(cfg, chat, docs, metrics.NewHTTPServerMetrics("api")).Handler()
}

func multipartBody(t *testing.T, field, filename, contentType, payload string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(payload)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestSendMessageReturnsExchange(t *testing.T) {
	chat := &chatFake{exchange: &domain.Exchange{
		User:      domain.Message{ID: 1, Role: domain.RoleUser, Text: "hi"},
		Assistant: domain.Message{ID: 2, Role: domain.RoleAssistant, Text: "hello"},
	}}
	handler := newTestHandler(testConfig(), chat, &ingestorFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(`{"text":"hi"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var exchange domain.Exchange
	if err := json.Unmarshal(res.Body.Bytes(), &exchange); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if exchange.Assistant.Text != "hello" {
		t.Fatalf("unexpected assistant text %q", exchange.Assistant.Text)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestSendMessageEmptyInputIsNoContent(t *testing.T) {
	chat := &chatFake{}
	handler := newTestHandler(testConfig(), chat, &ingestorFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(`{"text":"   "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for whitespace-only input, got %d", res.Code)
	}
	if len(chat.sent) != 0 {
		t.Fatalf("whitespace-only input must not be dispatched")
	}
}

func TestSendMessageBusyIsConflict(t *testing.T) {
	chat := &chatFake{err: domain.WrapError(domain.ErrBusy, "send", errors.New("in flight"))}
	handler := newTestHandler(testConfig(), chat, &ingestorFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(`{"text":"hi"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 while awaiting response, got %d", res.Code)
	}
}

func TestSendMessageInvalidJSONIsBadRequest(t *testing.T) {
	handler := newTestHandler(testConfig(), &chatFake{}, &ingestorFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(`{not json`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListMessagesReturnsHistory(t *testing.T) {
	chat := &chatFake{history: []domain.Message{
		{ID: 1, Role: domain.RoleUser, Text: "hi"},
		{ID: 2, Role: domain.RoleAssistant, Text: "hello"},
	}}
	handler := newTestHandler(testConfig(), chat, &ingestorFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/messages", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Messages []domain.Message        `json:"messages"`
		State    domain.InteractionState `json:"state"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(payload.Messages))
	}
	if payload.State != domain.StateIdle {
		t.Fatalf("expected idle state, got %s", payload.State)
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	docs := &ingestorFake{notice: &domain.Message{ID: 3, Role: domain.RoleFileNotice, Text: "Attached document: report.pdf"}}
	handler := newTestHandler(testConfig(), &chatFake{}, docs)

	body, contentType := multipartBody(t, "file", "report.pdf", "application/pdf", "%PDF-1.4 fake")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if docs.filename != "report.pdf" {
		t.Fatalf("expected filename to reach ingestor, got %q", docs.filename)
	}
	if string(docs.data) != "%PDF-1.4 fake" {
		t.Fatalf("expected raw bytes to reach ingestor")
	}
}

func TestUploadDocumentIgnoresNonPDF(t *testing.T) {
	docs := &ingestorFake{}
	handler := newTestHandler(testConfig(), &chatFake{}, docs)

	body, contentType := multipartBody(t, "file", "notes.txt", "text/plain", "plain text")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected non-PDF uploads to be silently ignored, got %d", res.Code)
	}
	if docs.filename != "" {
		t.Fatalf("non-PDF upload must not reach the ingestor")
	}
}

func TestUploadDocumentExtractionFailureIsUnprocessable(t *testing.T) {
	docs := &ingestorFake{err: domain.WrapError(domain.ErrExtraction, "parse pdf", errors.New("bad xref"))}
	handler := newTestHandler(testConfig(), &chatFake{}, docs)

	body, contentType := multipartBody(t, "file", "broken.pdf", "application/pdf", "not really a pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for extraction failure, got %d", res.Code)
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	cfg := testConfig()
	cfg.APIRateLimitRPS = 1
	cfg.APIRateLimitBurst = 1
	handler := newTestHandler(cfg, &chatFake{}, &ingestorFake{})

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}
