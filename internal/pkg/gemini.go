package pkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiClient 支持型聊天机器人使用的文本生成客户端
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate 生成一条回复。history 按 user/model 交替排列，最旧在前。
// 限流(429)和过载(503)映射为可重试的 AppError，重试策略在 service 层。
func (c *GeminiClient) Generate(ctx context.Context, system string, history []string, userMsg string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for i, h := range history {
		var role genai.Role = genai.RoleUser
		if i%2 == 1 {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h, role))
	}
	contents = append(contents, genai.NewContentFromText(userMsg, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusTooManyRequests:
				return "", ErrGenRateLimited.Wrap(err)
			case http.StatusServiceUnavailable:
				return "", ErrGenOverloaded.Wrap(err)
			}
		}
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}
