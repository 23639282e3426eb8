package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TextGenerator produces prose for an assembled prompt. It is the pipeline's
// only reach into the generative model, so the rest of the code never touches
// the SDK.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps a Gemini client as a TextGenerator.
func NewGeminiGenerator(client *genai.Client, model string) TextGenerator {
	return &geminiGenerator{client: client, model: model}
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: GetSystemPrompt(),
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned an empty response")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	if responseText.Len() == 0 {
		return "", errors.New("gemini returned no text parts")
	}
	return responseText.String(), nil
}
