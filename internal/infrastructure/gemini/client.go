// Package gemini оборачивает Google Gemini: генерация текста ответа и эмбеддинги.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

// contentGenerator - часть *genai.GenerativeModel, нужная генератору
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// contentEmbedder - часть *genai.EmbeddingModel
type contentEmbedder interface {
	EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
}

// Client держит одно соединение на генератор и энкодер
type Client struct {
	client *genai.Client
	logger *zap.Logger
}

// NewClient создает клиент Gemini по API ключу
func NewClient(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logger.Info("Gemini client created",
		zap.String("text_model", cfg.TextModel),
		zap.String("embedding_model", cfg.EmbeddingModel))
	return &Client{client: client, logger: logger}, nil
}

// Close cleans up the Gemini client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Generator реализует repository.TextGenerator
type Generator struct {
	model  contentGenerator
	logger *zap.Logger
}

// NewGenerator - генератор ответов на модели cfg.TextModel
func (c *Client) NewGenerator(cfg *config.GeminiConfig) *Generator {
	model := c.client.GenerativeModel(cfg.TextModel)
	model.SetTemperature(cfg.Temperature)
	return newGenerator(model, c.logger)
}

func newGenerator(model contentGenerator, logger *zap.Logger) *Generator {
	return &Generator{model: model, logger: logger}
}

// Generate склеивает сообщения в один промпт: системные инструкции, затем реплики.
func (g *Generator) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	prompt := buildPrompt(messages)
	if prompt == "" {
		return "", errors.ErrInvalidRequest.WithMessage("empty prompt")
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.ErrUpstreamTimeout.Wrap(err)
		}
		g.logger.Warn("Gemini generation failed", zap.Error(err))
		return "", errors.ErrGeneratorUnavailable.Wrap(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.ErrGeneratorUnavailable.Wrap(fmt.Errorf("no candidates with text"))
	}
	return text, nil
}

func buildPrompt(messages []domain.ChatMessage) string {
	var system, dialog []string
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if m.Role == domain.RoleSystem {
			system = append(system, content)
			continue
		}
		dialog = append(dialog, content)
	}
	if len(dialog) == 0 {
		return strings.Join(system, "\n\n")
	}
	if len(system) == 0 {
		return strings.Join(dialog, "\n")
	}
	return strings.Join(system, "\n\n") + "\n\nUser Message: " + strings.Join(dialog, "\n")
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok || strings.TrimSpace(string(txt)) == "" {
			continue
		}
		parts = append(parts, string(txt))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// EmbeddingProvider реализует embedding.Provider поверх EmbeddingModel.
// Размерность приводится к нужной сервисом embedding.Service.
type EmbeddingProvider struct {
	model contentEmbedder
}

// NewEmbeddingProvider - провайдер векторов на модели cfg.EmbeddingModel
func (c *Client) NewEmbeddingProvider(cfg *config.GeminiConfig) *EmbeddingProvider {
	return &EmbeddingProvider{model: c.client.EmbeddingModel(cfg.EmbeddingModel)}
}

func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty embedding")
	}
	return resp.Embedding.Values, nil
}
