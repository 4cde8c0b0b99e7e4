package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// jsonMIMEType は構造化出力を要求するときの MIME タイプです。
const jsonMIMEType = "application/json"

// GeminiConfig は GeminiClient の初期化パラメータです。
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	HTTPClient  *http.Client
	Retry       RetryPolicy
}

// GeminiClient は genai を用いた TextGenerator の実装です。
type GeminiClient struct {
	models      *genai.Models
	model       string
	temperature float32
	retry       RetryPolicy
}

// NewGeminiClient は genai クライアントを生成し、GeminiClient を初期化します。
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey は必須です")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Model は必須です")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}

	return &GeminiClient{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry:       cfg.Retry,
	}, nil
}

// GenerateJSON は ResponseJsonSchema 付きで構造化出力を要求します。
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema any) (string, error) {
	return c.generate(ctx, "generate_json", prompt, &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(c.temperature),
		ResponseMIMEType:   jsonMIMEType,
		ResponseJsonSchema: schema,
	})
}

// GenerateText はプレーンテキストを要求します。
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "generate_text", prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
}

func (c *GeminiClient) generate(ctx context.Context, op, prompt string, config *genai.GenerateContentConfig) (string, error) {
	return c.retry.Do(ctx, op, func() (string, error) {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			return "", fmt.Errorf("model %s: %w", c.model, err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	})
}
