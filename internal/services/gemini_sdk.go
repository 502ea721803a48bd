package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKTransport issues the call through the official Go client. The last
// content is sent as the new turn and everything before it becomes history.
type SDKTransport struct {
	client *genai.Client
	model  string
}

func NewSDKTransport(ctx context.Context, model, apiKey string) (*SDKTransport, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &SDKTransport{client: client, model: model}, nil
}

func (t *SDKTransport) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := t.client.GenerativeModel(t.model)
	model.SetTemperature(req.GenerationConfig.Temperature)
	model.SetMaxOutputTokens(req.GenerationConfig.MaxOutputTokens)
	model.SetTopP(req.GenerationConfig.TopP)

	history := toGenaiContents(req.Contents)
	if len(history) == 0 {
		return "", errors.New("gemini request has no contents")
	}

	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, history[len(history)-1].Parts...)
	if err != nil {
		return "", mapSDKError(err)
	}

	return firstGenaiText(resp), nil
}

func (t *SDKTransport) Close() error {
	return t.client.Close()
}

func toGenaiContents(contents []Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		parts := make([]genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
		out = append(out, &genai.Content{Role: c.Role, Parts: parts})
	}
	return out
}

// mapSDKError converts HTTP failures into UpstreamError. Safety blocks are a
// response-shape anomaly and yield no error, so the caller falls back.
func mapSDKError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return newUpstreamError(apiErr.Code, apiErr.Message)
	}

	return fmt.Errorf("Gemini API error: %w", err)
}

func firstGenaiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	if t, ok := cand.Content.Parts[0].(genai.Text); ok {
		return string(t)
	}
	return ""
}
