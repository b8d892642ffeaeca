// Package llm generates structured quote documents with Gemini.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/cartonq/cartonq-backend/internal/quote"
	"github.com/cartonq/cartonq-backend/pkg/config"
)

const systemInstruction = "You are a professional sales assistant for a packaging company. " +
	"Generate a detailed commercial proposal with exactly 3 pricing options: Standard, Rush and Strategic. " +
	"Use only the prices and lead times provided, never invent numbers. " +
	"Echo the control fields back exactly as given."

// contentGenerator is the single Gemini call the generator makes.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator produces quote documents through the Gemini structured-output
// API. The response schema pins the document shape; the orchestrator still
// re-validates the result before trusting it.
type Generator struct {
	models      contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
}

func NewGenerator(ctx context.Context, cfg config.LLMConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Generator{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, input quote.GenerationInput) (*quote.GenerationResult, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(input)), cfg)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", err)
	}

	return decodeResult(resp.Text())
}

func decodeResult(text string) (*quote.GenerationResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var result quote.GenerationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	return &result, nil
}
