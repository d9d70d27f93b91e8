package httpadapter

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/docchat/internal/config"
	"github.com/kirillkom/docchat/internal/core/domain"
	"github.com/kirillkom/docchat/internal/core/ports"
	"github.com/kirillkom/docchat/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg     config.Config
	chat    ports.ChatService
	docs    ports.DocumentIngestor
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	chat ports.ChatService,
	docs ports.DocumentIngestor,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		chat:    chat,
		docs:    docs,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat/messages", rt.chatMessages)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chatMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.listMessages(w, r)
	case http.MethodPost:
		rt.sendMessage(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) listMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": rt.chat.History(r.Context()),
		"state":    rt.chat.State(),
	})
}

func (rt *Router) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	exchange, err := rt.chat.Send(r.Context(), req.Text)
	switch {
	case domain.IsKind(err, domain.ErrEmptyInput):
		// Whitespace-only input is a no-op, not a client error.
		w.WriteHeader(http.StatusNoContent)
		return
	case domain.IsKind(err, domain.ErrBusy):
		rt.metrics.RecordTurn(serviceName, metrics.TurnOutcomeRejectedBusy, 0)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a response is already in flight"})
		return
	case err != nil:
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	outcome := metrics.TurnOutcomeOK
	if exchange.GenerationFailed {
		outcome = metrics.TurnOutcomeGenerationError
	}
	rt.metrics.RecordTurn(serviceName, outcome, time.Since(start))

	writeJSON(w, http.StatusOK, exchange)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if !isPDFUpload(fileHeader) {
		// Non-PDF selections are ignored at the boundary, nothing is
		// recorded and no error is surfaced.
		rt.metrics.RecordExtraction(serviceName, metrics.ExtractionOutcomeUnsupported, 0)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
		return
	}

	notice, err := rt.docs.Upload(r.Context(), fileHeader.Filename, data)
	if err != nil {
		rt.metrics.RecordExtraction(serviceName, metrics.ExtractionOutcomeFailed, len(data))
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.metrics.RecordExtraction(serviceName, metrics.ExtractionOutcomeOK, len(data))
	writeJSON(w, http.StatusCreated, map[string]any{"message": notice})
}

func isPDFUpload(header *multipart.FileHeader) bool {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if mediaType, _, found := strings.Cut(contentType, ";"); found {
		contentType = strings.TrimSpace(mediaType)
	}
	switch contentType {
	case "application/pdf":
		return true
	case "", "application/octet-stream":
		// Some browsers send a generic type; fall back to the extension.
		return strings.EqualFold(filepath.Ext(header.Filename), ".pdf")
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
