package llmgateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIBackend is the secondary LLM backend (Google Gemini), preferred
// by the routing heuristic for visualization/code-generation intent or
// overlong prompts. Grounded on
// _examples/theRebelliousNerd-codenerd/internal/embedding/genai.go's
// genai.NewClient / client.Models usage.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

// NewGenAIBackend builds a backend bound to a model name (e.g.
// "gemini-2.0-flash").
func NewGenAIBackend(ctx context.Context, apiKey, model string) (*GenAIBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genai backend: new client: %w", err)
	}
	return &GenAIBackend{client: client, model: model}, nil
}

func (b *GenAIBackend) Name() string { return "genai:" + b.model }

func (b *GenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	var systemInstruction *genai.Content
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			systemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != nil {
		cfg.SystemInstruction = systemInstruction
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := int32(req.MaxTokens)
		cfg.MaxOutputTokens = mt
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai backend: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("genai backend: empty response")
	}
	return text, nil
}
