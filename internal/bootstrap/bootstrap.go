package bootstrap

import (
	"github.com/kirillkom/docchat/internal/config"
	"github.com/kirillkom/docchat/internal/core/ports"
	"github.com/kirillkom/docchat/internal/core/usecase"
	"github.com/kirillkom/docchat/internal/infrastructure/conversation"
	"github.com/kirillkom/docchat/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/docchat/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/docchat/internal/infrastructure/resilience"
	"github.com/kirillkom/docchat/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Chat    ports.ChatService
	Docs    ports.DocumentIngestor
	Metrics *metrics.HTTPServerMetrics
}

// New wires one chat session: the in-memory conversation log, the PDF
// extractor, and the generation client behind its breaker, all owned by a
// single turn controller.
func New(cfg config.Config) *App {
	executor := resilience.NewExecutor(resilience.SingleAttempt(cfg.GenerationBreakerEnabled))
	generator := gemini.New(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, executor)

	controller := usecase.NewTurnController(
		conversation.NewLog(),
		pdf.NewExtractor(),
		generator,
	)

	return &App{
		Config:  cfg,
		Chat:    controller,
		Docs:    controller,
		Metrics: metrics.NewHTTPServerMetrics("api"),
	}
}
