package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks cyberdocs-rag/internal/llm Generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Generator is the single capability this system needs from the LLM provider:
// one prompt in, one answer out.
type Generator interface {
	// Generate sends a prompt to the model and returns the generated text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationParams holds sampling parameters passed through to the model unchanged.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// Client is a Gemini text generation client.
// It implements the Generator interface.
type Client struct {
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a new generation client for the given model.
// Safety thresholds are relaxed across all four harm categories because the
// corpus is security-standards material and answers routinely describe attacks.
func NewClient(gc *genai.Client, modelName string, params GenerationParams) *Client {
	model := gc.GenerativeModel(modelName)
	model.SetTemperature(params.Temperature)
	model.SetTopP(params.TopP)
	model.SetTopK(params.TopK)
	model.SetMaxOutputTokens(params.MaxOutputTokens)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	return &Client{
		model:     model,
		modelName: modelName,
	}
}

// Generate sends a prompt to the model and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return text, nil
}

// responseText flattens the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("candidate has no content")
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	if builder.Len() == 0 {
		return "", fmt.Errorf("candidate contains no text parts")
	}
	return builder.String(), nil
}
