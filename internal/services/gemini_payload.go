package services

import (
	"persona-relay/internal/models"
	"persona-relay/internal/persona"
)

const (
	upstreamRoleUser  = "user"
	upstreamRoleModel = "model"
)

// Wire shapes of the generateContent endpoint.

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
	TopP            float32 `json:"topP"`
}

type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type upstreamErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// BuildGenerateRequest prepends the persona as a leading user turn and maps
// every message onto the upstream role vocabulary: "user" stays "user",
// anything else becomes "model".
func BuildGenerateRequest(p persona.Persona, messages []models.Message) GenerateRequest {
	contents := make([]Content, 0, len(messages)+1)
	contents = append(contents, Content{
		Role:  upstreamRoleUser,
		Parts: []Part{{Text: p.Prompt}},
	})
	for _, msg := range messages {
		contents = append(contents, Content{
			Role:  upstreamRole(msg.Role),
			Parts: []Part{{Text: msg.Content}},
		})
	}

	return GenerateRequest{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:     p.Generation.Temperature,
			MaxOutputTokens: p.Generation.MaxOutputTokens,
			TopP:            p.Generation.TopP,
		},
	}
}

func upstreamRole(role string) string {
	if role == models.RoleUser {
		return upstreamRoleUser
	}
	return upstreamRoleModel
}

// firstText walks candidates[0].content.parts[0].text, returning "" if any level is missing.
func (r *generateResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return ""
	}
	return content.Parts[0].Text
}
