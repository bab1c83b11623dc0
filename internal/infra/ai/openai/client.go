package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/IvanGD/engine-diagnostic-site/internal/domain/diagnosis"
)

const maxTokens = 1024

const systemPrompt = `You are a diesel engine diagnostic assistant. Given an engine type and a
free-text symptom description, reply with concrete inspection steps a
technician should perform, one short paragraph, no preamble.`

// Diagnoser is the model-backed alternative to the rule engine, behind the
// same diagnosis.Diagnoser port. Unlike the rule engine it can fail, and it
// is never the default.
type Diagnoser struct {
	client *openai.Client
	model  string
}

func NewDiagnoser(apiKey, model string) *Diagnoser {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Diagnoser{client: openai.NewClient(apiKey), model: model}
}

func (d *Diagnoser) Diagnose(ctx context.Context, engineType, symptoms string) (diagnosis.Report, error) {
	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Engine type: %s\nSymptoms: %s", engineType, symptoms)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(d.model, "o1") || strings.HasPrefix(d.model, "o3") || strings.HasPrefix(d.model, "o4") || strings.HasPrefix(d.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return diagnosis.Report{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return diagnosis.Report{}, fmt.Errorf("empty completion from model %s", d.model)
	}

	return diagnosis.Report{
		Findings: []diagnosis.Finding{{
			Category:       "analysis",
			Summary:        "Model-suggested checks.",
			Recommendation: content,
		}},
	}, nil
}
